// Package metrics provides Prometheus metrics for the podium leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Leaderboard writes
	podiumUpdates   *prometheus.CounterVec
	entryMutations  *prometheus.CounterVec
	lockWait        prometheus.Histogram
	lockConflicts   prometheus.Counter
	rankingDuration *prometheus.HistogramVec

	// Read cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Store
	storeLatency   *prometheus.HistogramVec
	storeEntries   prometheus.Gauge
	rankedEntities prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector declarations
	auto := promauto.With(m.registry)

	m.podiumUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "podium_updates_total",
		Help:      "Podium submissions by outcome",
	}, []string{"outcome"})

	m.entryMutations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entry_mutations_total",
		Help:      "Score entry writes by operation and outcome",
	}, []string{"op", "outcome"})

	m.lockWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sport_lock_wait_milliseconds",
		Help:      "Time spent waiting for a per-sport write lock",
		Buckets:   m.histogramBuckets,
	})

	m.lockConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sport_lock_conflicts_total",
		Help:      "Writes rejected because the sport lock could not be acquired in time",
	})

	m.rankingDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_duration_milliseconds",
		Help:      "Time to compute a ranking view from the store",
		Buckets:   m.histogramBuckets,
	}, []string{"view"})

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_cache_hits_total",
		Help:      "Ranking views served from cache",
	}, []string{"view"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_cache_misses_total",
		Help:      "Ranking views recomputed from the store",
	}, []string{"view"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Score entry store latency by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "op"})

	m.storeEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_entries",
		Help:      "Number of live score entries",
	})

	m.rankedEntities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_communities",
		Help:      "Communities present in the last computed overall ranking",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "HTTP errors by endpoint, method and type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordPodiumUpdate counts a podium submission; outcome is "ok" or an error kind.
func RecordPodiumUpdate(outcome string) {
	if globalManager.enabled {
		globalManager.podiumUpdates.WithLabelValues(outcome).Inc()
	}
}

// RecordEntryMutation counts a raw entry write.
func RecordEntryMutation(op, outcome string) {
	if globalManager.enabled {
		globalManager.entryMutations.WithLabelValues(op, outcome).Inc()
	}
}

// RecordLockWait records time spent acquiring a sport lock.
func RecordLockWait(ms float64) {
	if globalManager.enabled {
		globalManager.lockWait.Observe(ms)
	}
}

// RecordLockConflict counts a lock acquisition timeout.
func RecordLockConflict() {
	if globalManager.enabled {
		globalManager.lockConflicts.Inc()
	}
}

// RecordRankingDuration records how long a view took to compute.
func RecordRankingDuration(view string, ms float64) {
	if globalManager.enabled {
		globalManager.rankingDuration.WithLabelValues(view).Observe(ms)
	}
}

// RecordCacheHit counts a cached view served.
func RecordCacheHit(view string) {
	if globalManager.enabled {
		globalManager.cacheHits.WithLabelValues(view).Inc()
	}
}

// RecordCacheMiss counts a view recomputed.
func RecordCacheMiss(view string) {
	if globalManager.enabled {
		globalManager.cacheMisses.WithLabelValues(view).Inc()
	}
}

// RecordStoreLatency records a store operation latency.
func RecordStoreLatency(backend, op string, ms float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(backend, op).Observe(ms)
	}
}

// UpdateStoreEntries sets the live entry gauge.
func UpdateStoreEntries(count int) {
	if globalManager.enabled {
		globalManager.storeEntries.Set(float64(count))
	}
}

// UpdateRankedCommunities sets the overall table size gauge.
func UpdateRankedCommunities(count int) {
	if globalManager.enabled {
		globalManager.rankedEntities.Set(float64(count))
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
	}
}

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// GetRegistry returns the registry the global manager publishes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
