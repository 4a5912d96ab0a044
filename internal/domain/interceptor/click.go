package interceptor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/tracker"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/id"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

// ApproveFunc records a user's decision to proceed to a URL.
type ApproveFunc func(url string) error

// PendingPopup is an in-page interstitial awaiting the user's answer.
type PendingPopup struct {
	ID        string         `json:"popupId"`
	TabID     int            `json:"tabId"`
	URL       string         `json:"url"`
	Decision  types.Decision `json:"decision"`
	Reason    string         `json:"reason"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Resolution is the outcome of a popup answer.
type Resolution struct {
	Popup     PendingPopup      `json:"popup"`
	Action    types.PopupAction `json:"action"`
	Navigated bool              `json:"navigated"`
}

// ClickStats is the click channel's view for getStats.
type ClickStats struct {
	ClicksProcessed uint64 `json:"clicksProcessed"`
	PopupsShown     uint64 `json:"popupsShown"`
	AllowedDirectly uint64 `json:"allowedDirectly"`
	PendingChecks   int    `json:"pendingChecks"`
	ActivePopups    int    `json:"activePopups"`
}

// ClickDeps are the collaborators of a Click interceptor.
type ClickDeps struct {
	Classifier classifier.Classifier
	Settings   Settings
	Host       browser.Host
	Pages      *Pages
	Patterns   *Patterns
	// Approve is called before navigating on "proceed".
	Approve ApproveFunc
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
	IDs     *id.Generator
}

// Click checks DOM link activations and runs in-page interstitials.
//
// Per attempt: IDLE -> CHECKING -> ALLOWED | INTERSTITIAL_SHOWN -> RESOLVED.
type Click struct {
	checker
	tracker  *tracker.Tracker
	host     browser.Host
	pages    *Pages
	patterns *Patterns
	approve  ApproveFunc
	ids      *id.Generator
	metrics  *monitoring.Metrics
	now      func() time.Time

	mu     sync.Mutex
	popups map[string]PendingPopup

	clicks  atomic.Uint64
	shown   atomic.Uint64
	allowed atomic.Uint64
}

// NewClick creates a click interceptor.
func NewClick(deps ClickDeps) *Click {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("click")
	ids := deps.IDs
	if ids == nil {
		ids = id.Default()
	}
	patterns := deps.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	approve := deps.Approve
	if approve == nil {
		approve = func(string) error { return nil }
	}

	return &Click{
		checker:  checker{classifier: deps.Classifier, settings: deps.Settings, logger: logger},
		tracker:  tracker.New(types.ChannelClick),
		host:     deps.Host,
		pages:    deps.Pages,
		patterns: patterns,
		approve:  approve,
		ids:      ids,
		metrics:  deps.Metrics,
		now:      time.Now,
		popups:   make(map[string]PendingPopup),
	}
}

// WithClock replaces the time source for popups and the tracker.
func (c *Click) WithClock(now func() time.Time) *Click {
	c.now = now
	c.tracker.WithClock(now)
	return c
}

// OnClick decides what the content script should do with a link click.
func (c *Click) OnClick(ctx context.Context, tabID int, rawURL string) types.ClickResult {
	c.clicks.Add(1)

	if c.patterns.IsIgnored(rawURL) || c.pages.IsInternal(rawURL) {
		c.logger.Debug("Click ignored", zap.String("url", rawURL))
		return c.allow()
	}

	if !c.tracker.TryBegin(tabID, rawURL) {
		c.logger.Debug("Click already being checked", zap.Int("tab_id", tabID), zap.String("url", rawURL))
		return c.allow()
	}
	defer c.tracker.End(tabID, rawURL)

	result := c.verdict(ctx, rawURL)
	decision := result.Decision()
	c.record(decision)

	c.logger.Info("Click decision",
		zap.Int("tab_id", tabID),
		zap.String("url", rawURL),
		zap.Stringer("decision", decision))

	switch {
	case decision == types.DecisionAllow:
		return c.allow()
	case decision == types.DecisionRedirectToSetup:
		return types.ClickResult{
			Action:      types.ClickRedirect,
			RedirectURL: c.pages.Setup(rawURL),
			Reason:      c.pages.SanitizeReason(result.Reason),
		}
	default:
		return c.interstitial(ctx, tabID, rawURL, decision, result.Reason)
	}
}

// interstitial registers a popup and asks the host to render it, falling
// back to the minimal confirmation. The result always names the popup so
// the content script can render its own prompt if both injections failed.
func (c *Click) interstitial(ctx context.Context, tabID int, rawURL string, decision types.Decision, reason string) types.ClickResult {
	pending := PendingPopup{
		ID:        c.ids.NewPopupID().String(),
		TabID:     tabID,
		URL:       rawURL,
		Decision:  decision,
		Reason:    c.pages.reasonOr(reason),
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.popups[pending.ID] = pending
	c.mu.Unlock()

	popup := browser.Popup{
		ID:      pending.ID,
		Type:    decision.PopupType(),
		URL:     rawURL,
		Domain:  utils.Hostname(rawURL),
		Reason:  pending.Reason,
		Actions: browser.ActionsFor(decision),
	}

	if err := c.host.ShowInterstitial(ctx, tabID, popup); err != nil {
		c.logger.Warn("Interstitial injection failed, using fallback confirm",
			zap.Int("tab_id", tabID),
			zap.String("popup_id", pending.ID),
			zap.Error(err))
		if err := c.host.ShowConfirm(ctx, tabID, popup); err != nil {
			c.logger.Error("Fallback confirm failed",
				zap.Int("tab_id", tabID),
				zap.String("popup_id", pending.ID),
				zap.Error(err))
		}
	}

	c.shown.Add(1)
	if c.metrics != nil {
		c.metrics.RecordInterstitial(popup.Type)
	}

	return types.ClickResult{
		Action:    types.ClickPopup,
		PopupType: popup.Type,
		PopupID:   pending.ID,
		Reason:    pending.Reason,
	}
}

// OnUserResponse applies the user's answer to a popup. On proceed the URL
// is approved first and the tab navigated second, so the navigation
// channel sees the approval when the navigation starts.
func (c *Click) OnUserResponse(ctx context.Context, popupID string, action types.PopupAction) (Resolution, error) {
	c.mu.Lock()
	pending, ok := c.popups[popupID]
	if !ok {
		c.mu.Unlock()
		c.logger.Warn("Response for unknown popup", zap.String("popup_id", popupID))
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownPopup, popupID)
	}
	if !slices.Contains(browser.ActionsFor(pending.Decision), action) {
		c.mu.Unlock()
		c.logger.Warn("Popup answer not offered",
			zap.String("popup_id", popupID),
			zap.String("action", string(action)),
			zap.Stringer("decision", pending.Decision))
		return Resolution{}, fmt.Errorf("%w: %q on %s popup", ErrInvalidAction, action, pending.Decision.PopupType())
	}
	delete(c.popups, popupID)
	c.mu.Unlock()

	res := Resolution{Popup: pending, Action: action}
	if action != types.PopupProceed {
		c.logger.Info("User declined navigation",
			zap.String("popup_id", popupID),
			zap.String("action", string(action)),
			zap.String("url", pending.URL))
		return res, nil
	}

	if err := c.approve(pending.URL); err != nil {
		return res, fmt.Errorf("approve %s: %w", pending.URL, err)
	}
	if err := c.host.UpdateTab(ctx, pending.TabID, pending.URL); err != nil {
		// The tab may have closed meanwhile; the approval simply expires.
		c.logger.Warn("Navigating after proceed failed",
			zap.Int("tab_id", pending.TabID),
			zap.String("url", pending.URL),
			zap.Error(err))
		if errors.Is(err, browser.ErrTabGone) {
			return res, nil
		}
		return res, fmt.Errorf("navigate tab %d: %w", pending.TabID, err)
	}

	res.Navigated = true
	c.logger.Info("User proceeded",
		zap.String("popup_id", popupID),
		zap.String("url", pending.URL))
	return res, nil
}

// Sweep drops in-flight checks and unanswered popups older than maxAge.
func (c *Click) Sweep(maxAge time.Duration) (checks, popups int) {
	checks = c.tracker.Sweep(maxAge)

	now := c.now()
	c.mu.Lock()
	for popupID, p := range c.popups {
		if now.Sub(p.CreatedAt) > maxAge {
			delete(c.popups, popupID)
			popups++
		}
	}
	c.mu.Unlock()

	return checks, popups
}

// Popup returns a pending popup by id.
func (c *Click) Popup(popupID string) (PendingPopup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.popups[popupID]
	return p, ok
}

// Stats returns the channel counters and sizes.
func (c *Click) Stats() ClickStats {
	c.mu.Lock()
	active := len(c.popups)
	c.mu.Unlock()

	return ClickStats{
		ClicksProcessed: c.clicks.Load(),
		PopupsShown:     c.shown.Load(),
		AllowedDirectly: c.allowed.Load(),
		PendingChecks:   c.tracker.Len(),
		ActivePopups:    active,
	}
}

func (c *Click) allow() types.ClickResult {
	c.allowed.Add(1)
	return types.ClickResult{Action: types.ClickAllow}
}

func (c *Click) record(decision types.Decision) {
	if c.metrics != nil {
		c.metrics.RecordDecision(string(types.ChannelClick), string(decision))
	}
}
