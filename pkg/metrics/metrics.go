package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 文档存储操作延迟（秒）
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "collection", "outcome"},
	)

	// 任务生命周期计数
	TaskLifecycleCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_lifecycle_total",
			Help: "Total number of task create/update/delete operations",
		},
		[]string{"action"}, // action: created, updated, deleted
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Number of SQL statements slower than the configured threshold",
		},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Task events that could not be published",
		},
		[]string{"routing_key"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStoreOp 记录文档存储操作延迟
func RecordStoreOp(operation, collection string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreOpDuration.WithLabelValues(operation, collection, outcome).Observe(duration.Seconds())
}

func IncrementTaskLifecycle(action string) {
	TaskLifecycleCount.WithLabelValues(action).Inc()
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

func IncrementEventPublishFailure(routingKey string) {
	EventPublishFailures.WithLabelValues(routingKey).Inc()
}
