// Package metrics provides Prometheus metrics for the scoutmatch service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker states as exported on the breaker_state gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager manages all Prometheus metrics for the scoutmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ranking
	rankings          *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	rankingLatency    *prometheus.HistogramVec
	candidatePoolSize prometheus.Histogram
	pairScores        *prometheus.CounterVec

	// Recommendations
	recommendations *prometheus.CounterVec

	// Store
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	profileCount      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutmatch",
		subsystem:        "matching",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rankings = m.counterVec("rankings_total",
		"Total number of ranking requests by strategy", "strategy")
	m.fallbacks = m.counterVec("fallbacks_total",
		"Total number of rankings answered from the fallback dataset", "strategy", "reason")
	m.rankingLatency = m.histogramVec("ranking_latency_milliseconds",
		"Ranking pipeline latency in milliseconds", "strategy")
	m.candidatePoolSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidate_pool_size",
		Help:        "Number of candidates scored per ranking",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		ConstLabels: m.customLabels,
	})
	m.pairScores = m.counterVec("pair_scores_total",
		"Total number of pairwise scores computed by method", "method")

	m.recommendations = m.counterVec("recommendations_total",
		"Total number of recommendations served by stakeholder type", "type")

	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds",
		"Profile store query latency in milliseconds", "operation")
	m.storeErrors = m.counterVec("store_errors_total",
		"Total number of failed profile store queries", "operation")
	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "breaker_state",
		Help:        "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		ConstLabels: m.customLabels,
	}, []string{"name"})
	m.profileCount = m.gauge("profiles_total", "Number of profiles visible to the store")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.customLabels,
	})
}

// RecordRanking increments the ranking counter for a strategy.
func RecordRanking(strategy string) {
	globalManager.rankings.WithLabelValues(strategy).Inc()
}

// RecordFallback increments the fallback counter.
func RecordFallback(strategy, reason string) {
	globalManager.fallbacks.WithLabelValues(strategy, reason).Inc()
}

// RecordRankingLatency records ranking latency in milliseconds.
func RecordRankingLatency(strategy string, latencyMs float64) {
	globalManager.rankingLatency.WithLabelValues(strategy).Observe(latencyMs)
}

// RecordCandidatePoolSize records how many candidates a ranking scored.
func RecordCandidatePoolSize(n int) {
	globalManager.candidatePoolSize.Observe(float64(n))
}

// RecordPairScore increments the pairwise score counter.
func RecordPairScore(method string) {
	globalManager.pairScores.WithLabelValues(method).Inc()
}

// RecordRecommendations adds n served recommendations for a type.
func RecordRecommendations(stakeholderType string, n int) {
	if n <= 0 {
		return
	}
	globalManager.recommendations.WithLabelValues(stakeholderType).Add(float64(n))
}

// RecordStoreQuery records a store query latency.
func RecordStoreQuery(operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError increments the store error counter.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// UpdateBreakerState sets the state gauge for a named breaker. Accepts the
// gobreaker state names.
func UpdateBreakerState(name, state string) error {
	var v float64
	switch state {
	case "closed":
		v = BreakerClosed
	case "half-open":
		v = BreakerHalfOpen
	case "open":
		v = BreakerOpen
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBreakerState, state)
	}
	globalManager.breakerState.WithLabelValues(name).Set(v)
	return nil
}

// UpdateProfileCount sets the profile gauge.
func UpdateProfileCount(count int) {
	globalManager.profileCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
