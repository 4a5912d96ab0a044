// Package types provides data structures shared across the guard.
//
// Core Types:
//   - ClassificationResult: normalized verdict returned by the classifier
//   - Decision: navigation outcome derived from a verdict
//   - Channel: interception layer that observed a navigation
//   - NavigationRequest: one accepted navigation attempt
//   - NavigationEvent: browser lifecycle event forwarded by the extension
//   - ClickResult: answer to a DOM click check
//
// Example Usage:
//
//	result := types.ClassificationResult{Malicious: true, Reason: "Phishing"}
//	switch result.Decision() {
//	case types.DecisionShowWarning:
//	    // render interstitial with bypass
//	}
package types
