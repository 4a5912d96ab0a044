package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safewaters"

// Metrics holds all Prometheus metrics for one guard process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Classifier metrics
	ClassifierCalls    *prometheus.CounterVec
	ClassifierDuration prometheus.Histogram
	VerdictCacheHits   prometheus.Counter

	// Guard metrics
	Decisions     *prometheus.CounterVec
	Interstitials *prometheus.CounterVec
	Redirects     prometheus.Counter
	Approvals     prometheus.Counter
	SweepRemoved  *prometheus.CounterVec

	// Bridge metrics
	BridgeConnections prometheus.Gauge
	BridgeFrames      *prometheus.CounterVec

	startTime time.Time
}

// NewMetrics creates a collector backed by a private registry, so tests
// can build as many as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ClassifierCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifier_calls_total",
				Help:      "Classifier calls by outcome (safe, malicious, blocked, uncertain)",
			},
			[]string{"outcome"},
		),
		ClassifierDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classifier_duration_seconds",
				Help:      "Classifier round-trip time in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		VerdictCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verdict_cache_hits_total",
				Help:      "Verdicts served from the local cache",
			},
		),

		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Navigation decisions by channel and kind",
			},
			[]string{"channel", "decision"},
		),
		Interstitials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interstitials_shown_total",
				Help:      "Interstitials shown by kind",
			},
			[]string{"kind"},
		),
		Redirects: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redirects_total",
				Help:      "Tabs redirected to an extension page",
			},
		),
		Approvals: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_total",
				Help:      "URLs explicitly approved by the user",
			},
		),
		SweepRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_removed_total",
				Help:      "Stale entries removed by the periodic sweep",
			},
			[]string{"target"},
		),

		BridgeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bridge_connections",
				Help:      "Connected extension bridges",
			},
		),
		BridgeFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_frames_total",
				Help:      "Bridge frames by direction and type",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Guard uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordClassification records one classifier round trip.
func (m *Metrics) RecordClassification(outcome string, duration time.Duration) {
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
	m.ClassifierDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncVerdictCacheHits() {
	m.VerdictCacheHits.Inc()
}

// RecordDecision records the outcome of one navigation check.
func (m *Metrics) RecordDecision(channel, decision string) {
	m.Decisions.WithLabelValues(channel, decision).Inc()
}

// RecordInterstitial records an in-page or full-page interstitial.
func (m *Metrics) RecordInterstitial(kind string) {
	m.Interstitials.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncRedirects() {
	m.Redirects.Inc()
}

func (m *Metrics) IncApprovals() {
	m.Approvals.Inc()
}

// RecordSweep records entries removed from one bookkeeping structure.
func (m *Metrics) RecordSweep(target string, removed int) {
	if removed > 0 {
		m.SweepRemoved.WithLabelValues(target).Add(float64(removed))
	}
}

func (m *Metrics) IncBridgeConnections() {
	m.BridgeConnections.Inc()
}

func (m *Metrics) DecBridgeConnections() {
	m.BridgeConnections.Dec()
}

// RecordBridgeFrame records a bridge frame ("in" or "out").
func (m *Metrics) RecordBridgeFrame(direction, frameType string) {
	m.BridgeFrames.WithLabelValues(direction, frameType).Inc()
}
