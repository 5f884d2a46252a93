package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric exported by the service.
const Namespace = "cascade"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests by fallback plan and outcome",
		},
		[]string{"plan", "status"}, // status: "hit" / "empty" / "error"
	)

	SearchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_attempts_total",
			Help:      "Total number of fallback attempts issued to the backend",
		},
		[]string{"plan", "attempt", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StaleHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stale_hits_total",
			Help:      "Index entries whose canonical record no longer exists",
		},
		[]string{"type", "action"}, // action: "queued" / "deleted" / "kept" / "dropped" / "failed"
	)

	EntityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "entity_cache_total",
			Help:      "Entity lookup cache hits and misses",
		},
		[]string{"kind", "result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchAttemptsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(StaleHitsTotal)
	prometheus.MustRegister(EntityCacheTotal)
	searchMetricsRegistered = true
}
