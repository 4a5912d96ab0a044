package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/api/http"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/api/middleware"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/api/ws"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/guard"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/providers/settings"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *nethttp.Server
	guard   *guard.Guard
	bridge  *ws.Bridge
	store   settings.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing SafeWaters guard",
		zap.String("port", cfg.Server.Port),
		zap.String("classifier_url", cfg.Classifier.BaseURL),
		zap.String("extension_base_url", cfg.Guard.ExtensionBaseURL),
	)

	// Metrics first; every component below reports into it
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("guard", logger)

	store, err := settings.Open(cfg.Storage.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	if cfg.Storage.DSN == "" {
		logger.Warn("STORAGE_DSN not set, settings will not survive a restart")
	}

	patterns, err := interceptor.LoadPatterns(cfg.Guard.PatternsFile)
	if err != nil {
		store.Close()
		return nil, err
	}

	clsCfg := classifier.DefaultConfig()
	clsCfg.BaseURL = cfg.Classifier.BaseURL
	clsCfg.Timeout = cfg.Classifier.Timeout
	clsCfg.RequestsPerSecond = cfg.Classifier.RequestsPerSecond
	client := classifier.NewClient(clsCfg, logger).WithMetrics(metrics)

	var cls classifier.Classifier = client
	if cfg.Guard.VerdictCacheTTL > 0 {
		cls = classifier.NewCached(client, cfg.Guard.VerdictCacheTTL, metrics)
		logger.Info("Verdict cache enabled", zap.Duration("ttl", cfg.Guard.VerdictCacheTTL))
	}

	bridge := ws.NewBridge(cfg.Bridge.CommandTimeout, logger).
		WithMetrics(metrics).
		WithTracer(tracer)

	g := guard.New(guard.Config{
		ExtensionBaseURL: cfg.Guard.ExtensionBaseURL,
		ClassifierURL:    cfg.Classifier.BaseURL,
		ApprovalTTL:      cfg.Guard.ApprovalTTL,
		SweepInterval:    cfg.Guard.SweepInterval,
		ClickMaxAge:      cfg.Guard.ClickMaxAge,
		NavigationMaxAge: cfg.Guard.NavigationMaxAge,
	}, guard.Deps{
		Classifier: cls,
		Validator:  client,
		Store:      store,
		Host:       bridge,
		Patterns:   patterns,
		Logger:     logger,
		Metrics:    metrics,
	})
	bridge.SetHandler(g)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Guard.ExtensionBaseURL)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := http.NewHandlers(g, http.Status{
		BridgeConnected: bridge.Connected,
		BreakerState:    func() string { return client.BreakerState().String() },
	}, logger)
	handlers.Register(router)

	router.GET("/bridge", bridge.Handle)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		guard:   g,
		bridge:  bridge,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	lc.File = cfg.File
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// Router exposes the configured engine.
func (s *Server) Router() *gin.Engine { return s.router }

// Guard exposes the orchestrator.
func (s *Server) Guard() *guard.Guard { return s.guard }

// Run starts the sweep loop and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpSrv = &nethttp.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.guard.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases the settings store and flushes the logger
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close settings store", zap.Error(err))
		return fmt.Errorf("failed to close settings store: %w", err)
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}
