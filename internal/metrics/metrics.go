package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "taskhub"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// Domain metrics
	OperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Completed write operations by entity",
		},
		[]string{"entity", "operation"},
	)

	CustomFieldRejectionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_custom_field_rejections_total",
			Help: "Custom field payloads rejected by error code",
		},
		[]string{"code"},
	)

	AccessDeniedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_access_denied_total",
			Help: "Requests refused by the tenant access policy",
		},
		[]string{"resource"},
	)

	DashboardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_dashboard_duration_seconds",
			Help:    "Time spent computing dashboard aggregates",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)
)

// RecordOperation increments the counter for a completed write
func RecordOperation(entity, operation string) {
	OperationsCounter.WithLabelValues(entity, operation).Inc()
}

func RecordAuthAttempt(result string) {
	AuthAttemptsCounter.WithLabelValues(result).Inc()
}

func RecordCustomFieldRejection(code string) {
	CustomFieldRejectionsCounter.WithLabelValues(code).Inc()
}

func RecordAccessDenied(resource string) {
	AccessDeniedCounter.WithLabelValues(resource).Inc()
}

// TrackDashboard returns a function that records the duration of a dashboard computation
func TrackDashboard(view string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DashboardDuration.WithLabelValues(view).Observe(time.Since(startTime).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
