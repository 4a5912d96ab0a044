package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

const (
	checkPath    = "/check"
	validatePath = "/managed_profiles/validate-token"
)

var errMalformed = errors.New("malformed classifier response")

// Config configures the remote classifier client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls. Zero means unlimited.
	RequestsPerSecond float64
	// FailureThreshold is how many consecutive failures open the breaker.
	FailureThreshold uint32
	// CooldownPeriod is how long the breaker stays open.
	CooldownPeriod time.Duration
}

// DefaultConfig matches the extension's historical settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://127.0.0.1:8000",
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		CooldownPeriod:   30 * time.Second,
	}
}

// Client talks to the remote reputation service. It makes exactly one
// request per call: no retries and no caching.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewClient creates a classifier client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if cfg.CooldownPeriod <= 0 {
		cfg.CooldownPeriod = DefaultConfig().CooldownPeriod
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("classifier")

	// Pooled transport from retryablehttp; retrying stays off.
	pooled := retryablehttp.NewClient()
	pooled.RetryMax = 0
	pooled.Logger = nil

	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetTransport(pooled.HTTPClient.Transport).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "SafeWaters-Guard/1.0")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	threshold := cfg.FailureThreshold
	breaker := resilience.New("classifier", resilience.Settings{
		MaxRequests: 1,
		Timeout:     cfg.CooldownPeriod,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsFailure: func(err error) bool {
			// The caller giving up says nothing about the service.
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return &Client{
		resty:   r,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the client.
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// BreakerState returns the circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Classify submits url to POST /check. An empty credential short-circuits
// to a needs-configuration verdict without touching the network.
func (c *Client) Classify(ctx context.Context, url, credential string) types.ClassificationResult {
	if credential == "" {
		return types.NeedsConfigurationResult()
	}

	timer := monitoring.NewTimer(c.metrics)

	body, err := c.post(ctx, checkPath, credential, map[string]string{"url": url})
	if err != nil {
		elapsed := timer.Stop("uncertain")
		c.logger.Warn("Classification failed",
			zap.String("url", url),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return types.UncertainResult(uncertainReason)
	}

	result := parseVerdict(body)
	elapsed := timer.Stop(outcome(result))
	c.logger.Debug("Classification complete",
		zap.String("url", url),
		zap.Bool("safe", result.Safe),
		zap.Bool("malicious", result.Malicious),
		zap.Bool("blocked_by_rule", result.BlockedByRule),
		zap.Duration("elapsed", elapsed))
	return result
}

// ValidateToken checks token against POST /managed_profiles/validate-token.
func (c *Client) ValidateToken(ctx context.Context, token string) TokenValidation {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenValidation{Error: "token is empty"}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return TokenValidation{Error: err.Error(), ErrorType: ErrorTypeUnavailable}
	}

	req := c.resty.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token})
	tracing.Inject(ctx, req.Header)

	resp, err := req.Post(validatePath)
	if err != nil {
		c.logger.Warn("Token validation unreachable", zap.Error(err))
		return TokenValidation{Error: err.Error(), ErrorType: ErrorTypeUnavailable}
	}

	parsed := gjson.ParseBytes(resp.Body())
	message := firstString(parsed, "error", "detail", "message")
	if resp.IsError() {
		if message == "" {
			message = fmt.Sprintf("validation returned status %d", resp.StatusCode())
		}
		return TokenValidation{Error: message}
	}
	if !parsed.IsObject() {
		return TokenValidation{Error: errMalformed.Error()}
	}
	return TokenValidation{Valid: parsed.Get("valid").Type == gjson.True, Error: message}
}

// post sends one JSON request through the limiter and the breaker and
// returns the body of a 2xx JSON object response.
func (c *Client) post(ctx context.Context, path, credential string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	return resilience.Execute(c.breaker, func() ([]byte, error) {
		req := c.resty.R().
			SetContext(ctx).
			SetAuthToken(credential).
			SetBody(payload)
		tracing.Inject(ctx, req.Header)

		resp, err := req.Post(path)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", path, err)
		}
		if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode())
		}
		body := resp.Body()
		if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
			return nil, errMalformed
		}
		return body, nil
	})
}

// parseVerdict maps provider fields onto a ClassificationResult. Only a
// literal JSON true sets a flag.
func parseVerdict(body []byte) types.ClassificationResult {
	doc := gjson.ParseBytes(body)

	blocked := doc.Get("is_blocked_by_user_rule").Type == gjson.True
	malicious := doc.Get("malicious").Type == gjson.True

	reason := firstString(doc, "blocking_rule_details", "info")
	if reason == "" {
		reason = defaultReason
	}

	return types.ClassificationResult{
		Safe:          !blocked && !malicious,
		BlockedByRule: blocked,
		Malicious:     malicious,
		Reason:        reason,
	}
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func outcome(r types.ClassificationResult) string {
	switch {
	case r.BlockedByRule:
		return "blocked"
	case r.Malicious:
		return "malicious"
	default:
		return "safe"
	}
}
