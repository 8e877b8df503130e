package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "portal_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route"},
	)

	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_backend_calls_total",
			Help: "Total number of calls to the applications backend",
		},
		[]string{"method", "endpoint", "code"},
	)

	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "portal_backend_call_duration_seconds",
			Help: "Duration of calls to the applications backend in seconds",
		},
		[]string{"method", "endpoint"},
	)

	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_form_submissions_total",
			Help: "Application form submissions by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	CommentSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_comment_saves_total",
			Help: "Debounced comment writes by outcome",
		},
		[]string{"outcome"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_exports_total",
			Help: "Spreadsheet exports by scope",
		},
		[]string{"scope"},
	)
)

// ObserveBackendCall records one backend round trip. A zero code means the
// request never completed.
func ObserveBackendCall(method, endpoint string, code int, took time.Duration) {
	c := "error"
	if code != 0 {
		c = strconv.Itoa(code)
	}
	BackendCalls.WithLabelValues(method, endpoint, c).Inc()
	BackendDuration.WithLabelValues(method, endpoint).Observe(took.Seconds())
}
