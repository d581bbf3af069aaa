// Package metrics provides Prometheus metrics for the agon debate service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the agon service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics - the debate lifecycle
	debatesStarted   prometheus.Counter
	debatesCompleted prometheus.Counter
	turnsSubmitted   prometheus.Counter
	verdicts         *prometheus.CounterVec

	// Identity metrics
	signups prometheus.Counter
	signins prometheus.Counter

	// Provider metrics - external AI partner health
	providerLatency prometheus.Histogram
	providerErrors  *prometheus.CounterVec

	// Store metrics - snapshot persistence health
	storeLoadLatency prometheus.Histogram
	storeSaveLatency prometheus.Histogram
	storeCorruptData prometheus.Counter
	storeFaults      prometheus.Counter

	// Session metrics
	activeSessions prometheus.Gauge
	sessionEvents  prometheus.Counter
	eventsDropped  prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Leaderboard metrics
	trackedProfiles prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "agon",
		subsystem:        "debate",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.debatesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debates_started_total",
		Help:      "Total number of debates started",
	})

	m.debatesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debates_completed_total",
		Help:      "Total number of debates scored and persisted as completed",
	})

	m.turnsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "turns_submitted_total",
		Help:      "Total number of user turns accepted by the session machine",
	})

	m.verdicts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "verdicts_total",
			Help:      "Total number of judge verdicts by winner",
		},
		[]string{"winner"},
	)

	m.signups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signups_total",
		Help:      "Total number of accounts created",
	})

	m.signins = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signins_total",
		Help:      "Total number of successful sign-ins",
	})

	m.providerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_latency_milliseconds",
		Help:      "Histogram of AI partner call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.providerErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "provider_errors_total",
			Help:      "Total number of AI partner failures by operation",
		},
		[]string{"operation"},
	)

	m.storeLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_load_latency_milliseconds",
		Help:      "Store collection load latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_latency_milliseconds",
		Help:      "Store collection replace latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeCorruptData = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_corrupt_data_total",
		Help:      "Total number of unparseable collection snapshots encountered",
	})

	m.storeFaults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_faults_total",
		Help:      "Total number of durable-medium failures",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live debate session machines",
	})

	m.sessionEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_events_total",
		Help:      "Total number of events published on the session bus",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session events dropped on backpressure",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.trackedProfiles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_profiles",
		Help:      "Total number of profiles visible to the ranking engine",
	})
}

// RecordDebateStarted increments the debates started counter.
func RecordDebateStarted() {
	globalManager.debatesStarted.Inc()
}

// RecordDebateCompleted increments the debates completed counter.
func RecordDebateCompleted() {
	globalManager.debatesCompleted.Inc()
}

// RecordTurnSubmitted increments the turns submitted counter.
func RecordTurnSubmitted() {
	globalManager.turnsSubmitted.Inc()
}

// RecordVerdict increments the verdict counter for a winner ("user", "ai", "draw").
func RecordVerdict(winner string) {
	globalManager.verdicts.WithLabelValues(winner).Inc()
}

// RecordSignup increments the signups counter.
func RecordSignup() {
	globalManager.signups.Inc()
}

// RecordSignin increments the signins counter.
func RecordSignin() {
	globalManager.signins.Inc()
}

// RecordProviderLatency records AI partner call latency in milliseconds.
func RecordProviderLatency(latencyMs float64) {
	globalManager.providerLatency.Observe(latencyMs)
}

// RecordProviderError increments the provider error counter for an operation.
func RecordProviderError(operation string) {
	globalManager.providerErrors.WithLabelValues(operation).Inc()
}

// RecordStoreLoadLatency records a collection load latency in milliseconds.
func RecordStoreLoadLatency(latencyMs float64) {
	globalManager.storeLoadLatency.Observe(latencyMs)
}

// RecordStoreSaveLatency records a collection replace latency in milliseconds.
func RecordStoreSaveLatency(latencyMs float64) {
	globalManager.storeSaveLatency.Observe(latencyMs)
}

// RecordStoreCorruptData increments the corrupt snapshot counter.
func RecordStoreCorruptData() {
	globalManager.storeCorruptData.Inc()
}

// RecordStoreFault increments the durable-medium failure counter.
func RecordStoreFault() {
	globalManager.storeFaults.Inc()
}

// UpdateActiveSessions sets the current number of live session machines.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionEvent increments the session bus publish counter.
func RecordSessionEvent() {
	globalManager.sessionEvents.Inc()
}

// RecordSessionEventDropped increments the session bus drop counter.
func RecordSessionEventDropped() {
	globalManager.eventsDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateTrackedProfiles sets the total profiles count.
func UpdateTrackedProfiles(count int) {
	globalManager.trackedProfiles.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
