package guard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/ledger"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/id"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// Store is the persisted state the guard reads and writes.
type Store interface {
	interceptor.Settings
	SetCredential(ctx context.Context, token string) error
	SetProtectionEnabled(ctx context.Context, enabled bool) error
}

// Config holds guard timing and addressing.
type Config struct {
	ExtensionBaseURL string
	ClassifierURL    string
	ApprovalTTL      time.Duration
	SweepInterval    time.Duration
	ClickMaxAge      time.Duration
	NavigationMaxAge time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		ExtensionBaseURL: "chrome-extension://safewaters/",
		ClassifierURL:    "http://127.0.0.1:8000",
		ApprovalTTL:      ledger.DefaultTTL,
		SweepInterval:    2 * time.Minute,
		ClickMaxAge:      30 * time.Second,
		NavigationMaxAge: 60 * time.Second,
	}
}

// Deps are the guard's collaborators.
type Deps struct {
	// Classifier serves both interceptors; it may be a cached decorator.
	Classifier classifier.Classifier
	Validator  classifier.TokenValidator
	Store      Store
	Host       browser.Host
	Patterns   *interceptor.Patterns
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
	IDs        *id.Generator
}

// Guard owns both interceptors and the shared approval ledger, and is the
// single entry point for extension messages and navigation events.
type Guard struct {
	cfg       Config
	store     Store
	validator classifier.TokenValidator
	host      browser.Host
	pages     *interceptor.Pages
	patterns  *interceptor.Patterns
	ledger    *ledger.Ledger
	click     *interceptor.Click
	nav       *interceptor.Navigation
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	messages      atomic.Uint64
	messageErrors atomic.Uint64
	sweeps        atomic.Uint64
}

// New wires the interceptors around one ledger.
func New(cfg Config, deps Deps) *Guard {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	patterns := deps.Patterns
	if patterns == nil {
		patterns = interceptor.DefaultPatterns()
	}

	pages := interceptor.NewPages(cfg.ExtensionBaseURL)
	l := ledger.New(cfg.ApprovalTTL)

	nav := interceptor.NewNavigation(interceptor.NavigationDeps{
		Classifier: deps.Classifier,
		Settings:   deps.Store,
		Host:       deps.Host,
		Pages:      pages,
		Patterns:   patterns,
		Ledger:     l,
		Logger:     logger,
		Metrics:    deps.Metrics,
	})
	click := interceptor.NewClick(interceptor.ClickDeps{
		Classifier: deps.Classifier,
		Settings:   deps.Store,
		Host:       deps.Host,
		Pages:      pages,
		Patterns:   patterns,
		Approve:    nav.ApproveUserNavigation,
		Logger:     logger,
		Metrics:    deps.Metrics,
		IDs:        deps.IDs,
	})

	return &Guard{
		cfg:       cfg,
		store:     deps.Store,
		validator: deps.Validator,
		host:      deps.Host,
		pages:     pages,
		patterns:  patterns,
		ledger:    l,
		click:     click,
		nav:       nav,
		logger:    logger.Named("guard"),
		metrics:   deps.Metrics,
	}
}

// WithClock replaces the time source of the ledger and both trackers.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.ledger.WithClock(now)
	g.click.WithClock(now)
	g.nav.WithClock(now)
	return g
}

// Click returns the click interceptor.
func (g *Guard) Click() *interceptor.Click { return g.click }

// Navigation returns the navigation interceptor.
func (g *Guard) Navigation() *interceptor.Navigation { return g.nav }

// HandleMessage decodes and dispatches a raw message.
func (g *Guard) HandleMessage(ctx context.Context, data []byte) Response {
	env, err := Decode(data)
	if err != nil {
		g.messages.Add(1)
		g.messageErrors.Add(1)
		g.logger.Warn("Rejected message", zap.Error(err))
		return failure(err)
	}
	return g.Dispatch(ctx, env)
}

// Dispatch routes a decoded message. It never panics; a failed click check
// still tells the content script to allow the click.
func (g *Guard) Dispatch(ctx context.Context, env Envelope) (resp Response) {
	g.messages.Add(1)
	action := Action("")
	if env.Message != nil {
		action = env.Message.Action()
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Message handler panicked",
				zap.String("action", string(action)),
				zap.String("panic", fmt.Sprint(r)))
			resp = failure(fmt.Errorf("internal error handling %s", action))
		}
		if !resp.Success {
			g.messageErrors.Add(1)
			if action == ActionCheckClickURL {
				resp.Fallback = &types.ClickResult{Action: types.ClickAllow}
			}
		}
	}()

	g.logger.Debug("Message received", zap.String("action", string(action)), zap.Int("tab_id", env.TabID))

	switch m := env.Message.(type) {
	case CheckClickURL:
		res := g.click.OnClick(ctx, env.TabID, m.URL)
		return Response{Success: true, Result: &res}
	case PopupResponse:
		return g.popupResponse(ctx, m)
	case ApproveNavigation:
		if err := g.nav.ApproveUserNavigation(m.URL); err != nil {
			return failure(err)
		}
		return Response{Success: true, Message: "Navigation approved"}
	case OpenWelcomePage:
		return g.openWelcome(ctx, m.UpdateToken)
	case GetConfig:
		cfg := g.configView(ctx)
		return Response{Success: true, Config: &cfg}
	case GetStats:
		stats := g.Stats()
		return Response{Success: true, Stats: &stats}
	case ValidateToken:
		return g.validateToken(ctx, m)
	case SetProtection:
		return g.setProtection(ctx, m)
	case ExtensionInstalled:
		g.logger.Info("Extension installed or updated", zap.String("reason", m.Reason))
		if m.Reason != "install" {
			return Response{Success: true}
		}
		return g.openWelcome(ctx, false)
	default:
		g.logger.Warn("Unknown message", zap.String("action", string(action)))
		return failure(fmt.Errorf("%w: %q", ErrUnknownAction, action))
	}
}

// HandleNavigation forwards a lifecycle event to the navigation interceptor.
func (g *Guard) HandleNavigation(ctx context.Context, ev types.NavigationEvent) (decision types.Decision, err error) {
	if !ev.Kind.Valid() {
		return types.DecisionAllow, fmt.Errorf("unknown navigation event %q", ev.Kind)
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Navigation handler panicked",
				zap.String("kind", string(ev.Kind)),
				zap.String("url", ev.URL),
				zap.String("panic", fmt.Sprint(r)))
			decision = types.DecisionAllow
		}
	}()
	return g.nav.HandleEvent(ctx, ev), nil
}

func (g *Guard) popupResponse(ctx context.Context, m PopupResponse) Response {
	res, err := g.click.OnUserResponse(ctx, m.PopupID, m.UserAction)
	if err != nil {
		return failure(err)
	}
	if m.URL != "" && m.URL != res.Popup.URL {
		g.logger.Warn("Popup response URL differs from popup",
			zap.String("popup_id", m.PopupID),
			zap.String("sent", m.URL),
			zap.String("popup", res.Popup.URL))
	}
	return Response{Success: true}
}

func (g *Guard) openWelcome(ctx context.Context, update bool) Response {
	tabID, err := g.host.CreateTab(ctx, g.pages.Welcome(update))
	if err != nil {
		return failure(fmt.Errorf("open welcome page: %w", err))
	}
	return Response{Success: true, TabID: tabID}
}

func (g *Guard) validateToken(ctx context.Context, m ValidateToken) Response {
	if g.validator == nil {
		return failure(errors.New("token validation not available"))
	}
	v := g.validator.ValidateToken(ctx, m.Token)
	if !v.Valid {
		g.logger.Info("Token rejected", zap.String("error_type", v.ErrorType))
		return Response{Success: true, Valid: &v.Valid, Error: v.Error}
	}
	if err := g.store.SetCredential(ctx, m.Token); err != nil {
		return failure(fmt.Errorf("store credential: %w", err))
	}
	g.logger.Info("Credential stored")
	return Response{Success: true, Valid: &v.Valid}
}

func (g *Guard) setProtection(ctx context.Context, m SetProtection) Response {
	if err := g.store.SetProtectionEnabled(ctx, m.Enabled); err != nil {
		return failure(fmt.Errorf("store protection flag: %w", err))
	}
	g.logger.Info("Protection toggled", zap.Bool("enabled", m.Enabled))
	return Response{Success: true}
}

// Start runs the periodic sweep until ctx is done.
func (g *Guard) Start(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()

	g.logger.Info("Sweep loop started", zap.Duration("interval", g.cfg.SweepInterval))
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Sweep loop stopped")
			return
		case <-ticker.C:
			g.safeSweep()
		}
	}
}

func (g *Guard) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Sweep panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	g.Sweep()
}

// SweepResult counts what one sweep removed.
type SweepResult struct {
	ClickChecks      int `json:"clickChecks"`
	Popups           int `json:"popups"`
	NavigationChecks int `json:"navigationChecks"`
	Approvals        int `json:"approvals"`
}

// Sweep drops stale in-flight checks, unanswered popups and expired
// approvals.
func (g *Guard) Sweep() SweepResult {
	var res SweepResult
	res.ClickChecks, res.Popups = g.click.Sweep(g.cfg.ClickMaxAge)
	res.NavigationChecks = g.nav.Sweep(g.cfg.NavigationMaxAge)
	res.Approvals = g.ledger.Sweep()
	g.sweeps.Add(1)

	if g.metrics != nil {
		g.metrics.RecordSweep("click_checks", res.ClickChecks)
		g.metrics.RecordSweep("popups", res.Popups)
		g.metrics.RecordSweep("navigation_checks", res.NavigationChecks)
		g.metrics.RecordSweep("approvals", res.Approvals)
	}
	g.logger.Debug("Sweep completed",
		zap.Int("click_checks", res.ClickChecks),
		zap.Int("popups", res.Popups),
		zap.Int("navigation_checks", res.NavigationChecks),
		zap.Int("approvals", res.Approvals))
	return res
}
