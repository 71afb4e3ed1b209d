package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miniapp_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActivityCacheHits counts activity response cache lookups by outcome (hit|miss).
	ActivityCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_activity_cache_lookups_total",
			Help: "Activity response cache lookups",
		},
		[]string{"result"},
	)

	// TokenRefreshes counts upstream token acquisitions by result (success|failure).
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_token_refreshes_total",
			Help: "External API token refresh attempts",
		},
		[]string{"result"},
	)

	// CrudOperations counts facade operations by backend and outcome.
	CrudOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miniapp_crud_operations_total",
			Help: "CRUD facade operations",
		},
		[]string{"backend", "operation", "result"},
	)
)
