package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packtrail_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// GraphQLResolverDuration records resolver latency per operation.
	GraphQLResolverDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "packtrail_graphql_resolver_duration_seconds",
		Help:    "GraphQL resolver latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// GraphQLErrors counts resolver errors per operation and error code.
	GraphQLErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packtrail_graphql_errors_total",
		Help: "Total GraphQL resolver errors by operation and code",
	}, []string{"operation", "code"})

	// WebSocketConnections is the gauge of active live-count websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "packtrail_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// StorageOperations counts object store operations by kind and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packtrail_storage_operations_total",
		Help: "Total object store operations by kind and outcome",
	}, []string{"operation", "outcome"})

	// CascadeDuration records the latency of duplication and deletion cascades.
	CascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "packtrail_cascade_duration_seconds",
		Help:    "Duration of duplication/deletion cascades in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"cascade"})

	// MailsSent counts outbound mails by kind and outcome.
	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packtrail_mails_total",
		Help: "Total outbound mails by kind and outcome",
	}, []string{"kind", "outcome"})
)

// ObserveResolver records a resolver's latency (use with defer).
func ObserveResolver(operation string, start time.Time) {
	GraphQLResolverDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordStorageOp increments the storage operation counter.
func RecordStorageOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StorageOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordMail increments the outbound mail counter.
func RecordMail(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	MailsSent.WithLabelValues(kind, outcome).Inc()
}
