package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tasktracker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	flushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tasktracker_store_flush_duration_seconds",
		Help:    "Duration of collection flushes to disk",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "result"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasktracker_auth_attempts_total",
		Help: "Count of authentication attempts by operation and result",
	}, []string{"operation", "result"})

	tasksByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tasktracker_tasks",
		Help: "Number of tasks by lifecycle status",
	}, []string{"status"})

	tasksOverdue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tasktracker_tasks_overdue",
		Help: "Number of tasks past their due date and not completed",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveFlush records the duration and result of a collection flush.
func ObserveFlush(collection, result string, duration time.Duration) {
	flushDuration.WithLabelValues(collection, result).Observe(duration.Seconds())
}

// ObserveAuthAttempt increments the auth counter for an operation
// ("login", "register") and result ("ok", "failed").
func ObserveAuthAttempt(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}

// SetTasksByStatus publishes the per-status task counts from the sweeper.
func SetTasksByStatus(status string, count int) {
	tasksByStatus.WithLabelValues(status).Set(float64(count))
}

// SetTasksOverdue publishes the overdue task count from the sweeper.
func SetTasksOverdue(count int) {
	if count < 0 {
		count = 0
	}
	tasksOverdue.Set(float64(count))
}
