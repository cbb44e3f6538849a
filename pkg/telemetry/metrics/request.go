package metrics

import (
	"time"

	"mercator-hq/portico/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP request handling.
//
// Metrics:
//   - portico_http_requests_total: request count by method, route, status
//   - portico_http_request_duration_seconds: request latency by method, route
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)

	return rm
}

// RecordRequest records one completed request.
func (rm *RequestMetrics) RecordRequest(method, route, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, route, status).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
