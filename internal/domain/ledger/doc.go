// Package ledger records URLs a user has explicitly chosen to proceed to.
//
// An approval made through one interception channel suppresses the other
// channel's check of the same URL for a short TTL (30 seconds by default).
// URLs are keyed by their normalized form, so fragments never matter.
//
// Each entry carries its own deadline. IsApproved and Consume treat an
// entry past its deadline as absent and delete it on the spot, so expiry
// holds even if the periodic Sweep never runs.
//
// Example Usage:
//
//	l := ledger.New(30 * time.Second)
//	_, _ = l.Approve("https://example.com/login#top")
//	if l.Consume("https://example.com/login") {
//	    // let the navigation through
//	}
package ledger
