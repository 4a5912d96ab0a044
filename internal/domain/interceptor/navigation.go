package interceptor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/ledger"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/tracker"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// NavigationStats is the navigation channel's view for getStats.
type NavigationStats struct {
	NavigationsProcessed uint64 `json:"navigationsProcessed"`
	PagesBlocked         uint64 `json:"pagesBlocked"`
	PagesRedirected      uint64 `json:"pagesRedirected"`
	PendingNavigations   int    `json:"pendingNavigations"`
	ApprovedNavigations  int    `json:"approvedNavigations"`
}

// NavigationDeps are the collaborators of a Navigation interceptor.
type NavigationDeps struct {
	Classifier classifier.Classifier
	Settings   Settings
	Host       browser.Host
	Pages      *Pages
	Patterns   *Patterns
	Ledger     *ledger.Ledger
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

// Navigation checks browser-level (address bar) navigations and redirects
// the tab to a full-page interstitial when needed.
//
// Per attempt: IDLE -> PENDING -> ALLOWED | REDIRECTED.
type Navigation struct {
	checker
	tracker  *tracker.Tracker
	ledger   *ledger.Ledger
	host     browser.Host
	pages    *Pages
	patterns *Patterns
	metrics  *monitoring.Metrics

	processed  atomic.Uint64
	blocked    atomic.Uint64
	redirected atomic.Uint64
}

// NewNavigation creates a navigation interceptor sharing l with the
// rest of the guard.
func NewNavigation(deps NavigationDeps) *Navigation {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("navigation")
	patterns := deps.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	l := deps.Ledger
	if l == nil {
		l = ledger.New(ledger.DefaultTTL)
	}

	return &Navigation{
		checker:  checker{classifier: deps.Classifier, settings: deps.Settings, logger: logger},
		tracker:  tracker.New(types.ChannelAddressBar),
		ledger:   l,
		host:     deps.Host,
		pages:    deps.Pages,
		patterns: patterns,
		metrics:  deps.Metrics,
	}
}

// WithClock replaces the tracker's time source.
func (n *Navigation) WithClock(now func() time.Time) *Navigation {
	n.tracker.WithClock(now)
	return n
}

// HandleEvent routes a lifecycle event. Only beforeNavigate can produce a
// decision other than ALLOW.
func (n *Navigation) HandleEvent(ctx context.Context, ev types.NavigationEvent) types.Decision {
	switch ev.Kind {
	case types.NavigationBefore:
		return n.OnBeforeNavigate(ctx, ev.TabID, ev.FrameID, ev.URL)
	case types.NavigationCommitted:
		n.OnCommitted(ev.TabID, ev.FrameID, ev.URL)
	case types.NavigationCompleted:
		n.OnCompleted(ev.TabID, ev.FrameID, ev.URL)
	case types.NavigationError:
		n.OnError(ev.TabID, ev.FrameID, ev.URL, ev.Error)
	default:
		n.logger.Warn("Unknown navigation event", zap.String("kind", string(ev.Kind)))
	}
	return types.DecisionAllow
}

// OnBeforeNavigate checks a main-frame navigation and, when it must not
// proceed, replaces the tab's URL with the matching interstitial.
func (n *Navigation) OnBeforeNavigate(ctx context.Context, tabID, frameID int, rawURL string) (decision types.Decision) {
	if frameID != 0 {
		return types.DecisionAllow
	}
	n.processed.Add(1)

	if reason := n.skipReason(rawURL); reason != "" {
		n.logger.Debug("Navigation ignored", zap.String("url", rawURL), zap.String("reason", reason))
		return types.DecisionAllow
	}

	if n.ledger.Consume(rawURL) {
		n.logger.Info("User-approved navigation allowed", zap.Int("tab_id", tabID), zap.String("url", rawURL))
		return types.DecisionAllow
	}

	if !n.patterns.IsDirect(rawURL) {
		n.logger.Debug("Navigation ignored, not direct", zap.String("url", rawURL))
		return types.DecisionAllow
	}

	if !n.tracker.TryBegin(tabID, rawURL) {
		n.logger.Debug("Navigation already being checked", zap.Int("tab_id", tabID), zap.String("url", rawURL))
		return types.DecisionAllow
	}
	defer n.tracker.End(tabID, rawURL)

	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Navigation check panicked",
				zap.String("url", rawURL),
				zap.String("panic", fmt.Sprint(r)))
			decision = types.DecisionShowUncertain
			n.redirect(ctx, tabID, rawURL, n.pages.Uncertain(rawURL, fallbackReason), decision)
		}
	}()

	result := n.verdict(ctx, rawURL)
	decision = result.Decision()

	// The user may have proceeded from a click popup while we waited.
	if decision != types.DecisionAllow && n.ledger.Consume(rawURL) {
		n.logger.Info("Approved during check, not redirecting",
			zap.Int("tab_id", tabID),
			zap.String("url", rawURL),
			zap.Stringer("decision", decision))
		decision = types.DecisionAllow
	}

	if n.metrics != nil {
		n.metrics.RecordDecision(string(types.ChannelAddressBar), string(decision))
	}
	n.logger.Info("Navigation decision",
		zap.Int("tab_id", tabID),
		zap.String("url", rawURL),
		zap.Stringer("decision", decision))

	if decision == types.DecisionAllow {
		return decision
	}

	n.blocked.Add(1)
	n.redirect(ctx, tabID, rawURL, n.pages.ForDecision(decision, rawURL, result.Reason), decision)
	return decision
}

// OnCommitted notes a commit that raced an in-flight check. The check is
// not cancelled; a late block still redirects the tab.
func (n *Navigation) OnCommitted(tabID, frameID int, rawURL string) {
	if frameID != 0 {
		return
	}
	if _, pending := n.tracker.Get(tabID, rawURL); pending {
		n.logger.Debug("Navigation committed while checking", zap.Int("tab_id", tabID), zap.String("url", rawURL))
	}
}

// OnCompleted clears bookkeeping for a finished navigation.
func (n *Navigation) OnCompleted(tabID, frameID int, rawURL string) {
	if frameID != 0 {
		return
	}
	if n.tracker.End(tabID, rawURL) {
		n.logger.Debug("Navigation completed, cleared", zap.Int("tab_id", tabID), zap.String("url", rawURL))
	}
}

// OnError clears bookkeeping for a failed navigation.
func (n *Navigation) OnError(tabID, frameID int, rawURL, reason string) {
	if frameID != 0 {
		return
	}
	if n.tracker.End(tabID, rawURL) {
		n.logger.Debug("Navigation failed, cleared",
			zap.Int("tab_id", tabID),
			zap.String("url", rawURL),
			zap.String("error", reason))
	}
}

// ApproveUserNavigation suppresses this channel's checks of rawURL for the
// ledger TTL.
func (n *Navigation) ApproveUserNavigation(rawURL string) error {
	entry, err := n.ledger.Approve(rawURL)
	if err != nil {
		n.logger.Warn("Approval rejected", zap.String("url", rawURL), zap.Error(err))
		return err
	}
	if n.metrics != nil {
		n.metrics.IncApprovals()
	}
	n.logger.Info("Navigation approved by user",
		zap.String("url", rawURL),
		zap.String("normalized", entry.NormalizedURL),
		zap.Time("deadline", entry.Deadline))
	return nil
}

// IsApproved reports whether rawURL holds a live approval.
func (n *Navigation) IsApproved(rawURL string) bool {
	return n.ledger.IsApproved(rawURL)
}

// Sweep drops in-flight checks older than maxAge.
func (n *Navigation) Sweep(maxAge time.Duration) int {
	return n.tracker.Sweep(maxAge)
}

// Stats returns the channel counters and sizes.
func (n *Navigation) Stats() NavigationStats {
	return NavigationStats{
		NavigationsProcessed: n.processed.Load(),
		PagesBlocked:         n.blocked.Load(),
		PagesRedirected:      n.redirected.Load(),
		PendingNavigations:   n.tracker.Len(),
		ApprovedNavigations:  n.ledger.Len(),
	}
}

func (n *Navigation) skipReason(rawURL string) string {
	switch {
	case rawURL == "":
		return "empty"
	case n.pages.IsInternal(rawURL):
		return "extension page"
	case n.patterns.IsSpecialProtocol(rawURL):
		return "special protocol"
	case n.patterns.IsIgnored(rawURL):
		return "ignored prefix"
	case n.patterns.IsSearch(rawURL):
		return "search engine"
	case n.patterns.IsBrowserDomain(rawURL):
		return "browser domain"
	case n.patterns.IsTrusted(rawURL):
		return "trusted domain"
	}
	return ""
}

// redirect failures are logged only; a closed tab has nothing to retry.
func (n *Navigation) redirect(ctx context.Context, tabID int, original, target string, decision types.Decision) {
	if err := n.host.UpdateTab(ctx, tabID, target); err != nil {
		n.logger.Error("Redirect failed",
			zap.Int("tab_id", tabID),
			zap.String("url", original),
			zap.Error(err))
		return
	}
	n.redirected.Add(1)
	if n.metrics != nil {
		n.metrics.IncRedirects()
		if decision.Interstitial() {
			n.metrics.RecordInterstitial(decision.PopupType())
		}
	}
	n.logger.Info("Navigation redirected",
		zap.Int("tab_id", tabID),
		zap.String("url", original),
		zap.String("page", target))
}
