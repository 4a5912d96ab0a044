package interceptor

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

const (
	blockedPage   = "src/pages/blocked/blocked.html"
	warningPage   = "src/pages/warning/warning.html"
	uncertainPage = "src/pages/uncertain/uncertain.html"
	welcomePage   = "src/pages/welcome/welcome.html"

	sourceNavigation = "navigation"
	fallbackReason   = "Verification error"
	maxReasonLength  = 500
)

// Pages builds URLs of the extension's full-page interstitials.
type Pages struct {
	base   string
	policy *bluemonday.Policy
}

// NewPages creates a page builder rooted at the extension base URL,
// e.g. "chrome-extension://<id>/".
func NewPages(base string) *Pages {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Pages{base: base, policy: bluemonday.StrictPolicy()}
}

// Base returns the extension base URL.
func (p *Pages) Base() string {
	return p.base
}

// IsInternal reports whether rawURL is one of the extension's own pages.
func (p *Pages) IsInternal(rawURL string) bool {
	return strings.HasPrefix(strings.TrimSpace(rawURL), p.base)
}

// SanitizeReason strips markup from a provider reason and bounds its length.
func (p *Pages) SanitizeReason(reason string) string {
	clean := strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(reason)))
	clean = strings.Join(strings.Fields(clean), " ")
	if r := []rune(clean); len(r) > maxReasonLength {
		clean = string(r[:maxReasonLength])
	}
	return clean
}

// Blocked is the no-bypass page for rule-blocked URLs.
func (p *Pages) Blocked(target, reason string) string {
	return p.build(blockedPage, url.Values{
		"url":    {target},
		"reason": {p.reasonOr(reason)},
		"source": {sourceNavigation},
	})
}

// Warning is the bypassable page for malicious URLs.
func (p *Pages) Warning(target, reason string) string {
	return p.build(warningPage, url.Values{
		"url":    {target},
		"domain": {utils.Hostname(target)},
		"reason": {p.reasonOr(reason)},
		"source": {sourceNavigation},
	})
}

// Uncertain is the bypassable page for unverifiable URLs.
func (p *Pages) Uncertain(target, reason string) string {
	return p.build(uncertainPage, url.Values{
		"url":    {target},
		"reason": {p.reasonOr(reason)},
		"source": {sourceNavigation},
	})
}

// Setup is the onboarding page reached from a navigation to returnURL.
func (p *Pages) Setup(returnURL string) string {
	return p.build(welcomePage, url.Values{
		"source":     {sourceNavigation},
		"return_url": {returnURL},
	})
}

// Welcome is the onboarding page opened on demand.
func (p *Pages) Welcome(update bool) string {
	if !update {
		return p.base + welcomePage
	}
	return p.build(welcomePage, url.Values{"update": {"true"}})
}

// ForDecision returns the page for a non-allow decision.
func (p *Pages) ForDecision(decision types.Decision, target, reason string) string {
	switch decision {
	case types.DecisionShowBlocked:
		return p.Blocked(target, reason)
	case types.DecisionShowWarning:
		return p.Warning(target, reason)
	case types.DecisionRedirectToSetup:
		return p.Setup(target)
	default:
		return p.Uncertain(target, reason)
	}
}

func (p *Pages) reasonOr(reason string) string {
	if clean := p.SanitizeReason(reason); clean != "" {
		return clean
	}
	return fallbackReason
}

// url.Values.Encode sorts keys, which keeps page URLs stable.
func (p *Pages) build(page string, params url.Values) string {
	return p.base + page + "?" + params.Encode()
}
