// Package metrics registers the server's prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by middleware and domain services.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	auditRecords  *prometheus.CounterVec
	projFallbacks *prometheus.CounterVec
}

// New creates collectors on a private registry so tests can build as many
// instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuclibook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nuclibook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auditRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuclibook",
			Name:      "action_log_records_total",
			Help:      "Action log entries written, by action code.",
		}, []string{"action"}),
		projFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nuclibook",
			Name:      "projection_fallbacks_total",
			Help:      "Relation fetches that failed and were rendered as empty.",
		}, []string{"relation"}),
	}
	m.registry.MustRegister(
		m.httpRequests, m.httpDuration, m.auditRecords, m.projFallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// AuditRecorded counts one action log entry.
func (m *Metrics) AuditRecorded(actionID int) {
	if m == nil {
		return
	}
	m.auditRecords.WithLabelValues(strconv.Itoa(actionID)).Inc()
}

// ProjectionFallback counts one relation fetch that degraded to empty.
func (m *Metrics) ProjectionFallback(relation string) {
	if m == nil {
		return
	}
	m.projFallbacks.WithLabelValues(relation).Inc()
}

// Middleware records request counts and latency keyed by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
