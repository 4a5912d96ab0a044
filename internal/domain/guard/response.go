package guard

import (
	"context"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// Response answers every message. Fields beyond Success are set per action.
type Response struct {
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	Result   *types.ClickResult `json:"result,omitempty"`
	Fallback *types.ClickResult `json:"fallback,omitempty"`
	Message  string             `json:"message,omitempty"`
	TabID    int                `json:"tabId,omitempty"`
	Config   *ConfigView        `json:"config,omitempty"`
	Stats    *Stats             `json:"stats,omitempty"`
	Valid    *bool              `json:"valid,omitempty"`
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// ConfigView is the getConfig payload.
type ConfigView struct {
	APIBaseURL         string                `json:"apiBaseUrl"`
	ExtensionBaseURL   string                `json:"extensionBaseUrl"`
	ApprovalTTLMs      int64                 `json:"approvalTtlMs"`
	CleanupIntervalMs  int64                 `json:"cleanupIntervalMs"`
	ClickMaxAgeMs      int64                 `json:"clickMaxAgeMs"`
	NavigationMaxAgeMs int64                 `json:"navigationMaxAgeMs"`
	ProtectionEnabled  bool                  `json:"protectionEnabled"`
	Configured         bool                  `json:"configured"`
	Patterns           *interceptor.Patterns `json:"patterns"`
}

// Stats is the getStats payload. Counters are process-lifetime totals.
type Stats struct {
	ClicksProcessed      uint64           `json:"clicksProcessed"`
	NavigationsProcessed uint64           `json:"navigationsProcessed"`
	InterstitialsShown   uint64           `json:"interstitialsShown"`
	PagesBlocked         uint64           `json:"pagesBlocked"`
	PagesRedirected      uint64           `json:"pagesRedirected"`
	MessagesHandled      uint64           `json:"messagesHandled"`
	MessageErrors        uint64           `json:"messageErrors"`
	Sweeps               uint64           `json:"sweeps"`
	Interceptors         InterceptorStats `json:"interceptors"`
}

// InterceptorStats holds each channel's own view.
type InterceptorStats struct {
	Click      interceptor.ClickStats      `json:"click"`
	Navigation interceptor.NavigationStats `json:"navigation"`
}

// Stats snapshots the lifetime counters.
func (g *Guard) Stats() Stats {
	click := g.click.Stats()
	nav := g.nav.Stats()
	return Stats{
		ClicksProcessed:      click.ClicksProcessed,
		NavigationsProcessed: nav.NavigationsProcessed,
		InterstitialsShown:   click.PopupsShown + nav.PagesRedirected,
		PagesBlocked:         nav.PagesBlocked,
		PagesRedirected:      nav.PagesRedirected,
		MessagesHandled:      g.messages.Load(),
		MessageErrors:        g.messageErrors.Load(),
		Sweeps:               g.sweeps.Load(),
		Interceptors:         InterceptorStats{Click: click, Navigation: nav},
	}
}

func (g *Guard) configView(ctx context.Context) ConfigView {
	enabled, err := g.store.ProtectionEnabled(ctx)
	if err != nil {
		enabled = true
	}
	credential, err := g.store.Credential(ctx)
	configured := err == nil && credential != ""

	return ConfigView{
		APIBaseURL:         g.cfg.ClassifierURL,
		ExtensionBaseURL:   g.pages.Base(),
		ApprovalTTLMs:      g.ledger.TTL().Milliseconds(),
		CleanupIntervalMs:  g.cfg.SweepInterval.Milliseconds(),
		ClickMaxAgeMs:      g.cfg.ClickMaxAge.Milliseconds(),
		NavigationMaxAgeMs: g.cfg.NavigationMaxAge.Milliseconds(),
		ProtectionEnabled:  enabled,
		Configured:         configured,
		Patterns:           g.patterns,
	}
}
