package metrics

import (
	"strconv"
	"time"

	"github.com/marmos91/dittolist/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// apiMetrics is the Prometheus implementation of api.Metrics.
type apiMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

// NewAPIMetrics creates a Prometheus-backed api.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes the API handler use its no-op implementation.
func NewAPIMetrics() api.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newAPIMetrics(GetRegistry())
}

func newAPIMetrics(reg prometheus.Registerer) *apiMetrics {
	return &apiMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittolist_http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.01,  // 10ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					30.0,  // 30s
					90.0,  // 90s
				},
			},
			[]string{"route", "method"},
		),
		rateLimited: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_http_rate_limited_total",
				Help: "Total number of HTTP requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// ObserveRequest implements api.Metrics.ObserveRequest
func (m *apiMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRateLimited implements api.Metrics.RecordRateLimited
func (m *apiMetrics) RecordRateLimited(route string) {
	m.rateLimited.WithLabelValues(route).Inc()
}
