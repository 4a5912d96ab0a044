package types

// ClassificationResult is the normalized outcome of a classifier call.
type ClassificationResult struct {
	Safe               bool   `json:"safe"`
	BlockedByRule      bool   `json:"blockedByRule"`
	Malicious          bool   `json:"malicious"`
	Uncertain          bool   `json:"uncertain"`
	NeedsConfiguration bool   `json:"needsConfiguration"`
	Reason             string `json:"reason"`
}

// SafeResult is the verdict used when no check is needed.
func SafeResult() ClassificationResult {
	return ClassificationResult{Safe: true}
}

// UncertainResult is the verdict for a failed or unverifiable check.
func UncertainResult(reason string) ClassificationResult {
	return ClassificationResult{Uncertain: true, Reason: reason}
}

// NeedsConfigurationResult is the verdict when no credential is stored.
func NeedsConfigurationResult() ClassificationResult {
	return ClassificationResult{NeedsConfiguration: true, Reason: "Configuration required"}
}

// Definitive reports whether the verdict came from a successful check.
func (r ClassificationResult) Definitive() bool {
	return !r.Uncertain && !r.NeedsConfiguration
}

// Decision derives the navigation outcome. Precedence:
// needsConfiguration > blockedByRule > malicious > uncertain > safe.
// A verdict that is neither safe nor flagged is treated as uncertain.
func (r ClassificationResult) Decision() Decision {
	switch {
	case r.NeedsConfiguration:
		return DecisionRedirectToSetup
	case r.BlockedByRule:
		return DecisionShowBlocked
	case r.Malicious:
		return DecisionShowWarning
	case r.Uncertain, !r.Safe:
		return DecisionShowUncertain
	default:
		return DecisionAllow
	}
}

// Decision is the navigation outcome for one attempt.
type Decision string

const (
	DecisionAllow           Decision = "ALLOW"
	DecisionShowBlocked     Decision = "SHOW_BLOCKED"
	DecisionShowWarning     Decision = "SHOW_WARNING"
	DecisionShowUncertain   Decision = "SHOW_UNCERTAIN"
	DecisionRedirectToSetup Decision = "REDIRECT_TO_SETUP"
)

// Interstitial reports whether the decision suspends navigation behind a page or popup.
func (d Decision) Interstitial() bool {
	switch d {
	case DecisionShowBlocked, DecisionShowWarning, DecisionShowUncertain:
		return true
	}
	return false
}

// BypassAllowed reports whether the user may proceed past the interstitial.
func (d Decision) BypassAllowed() bool {
	return d == DecisionShowWarning || d == DecisionShowUncertain
}

// PopupType is the in-page interstitial variant, as named by the extension.
func (d Decision) PopupType() string {
	switch d {
	case DecisionShowBlocked:
		return "blocked"
	case DecisionShowWarning:
		return "warning"
	case DecisionShowUncertain:
		return "uncertain"
	}
	return ""
}

func (d Decision) String() string { return string(d) }
