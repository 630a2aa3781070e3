// Package metrics exposes Prometheus collectors for the auth service.
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"authcore/config"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const namespace = "authcore"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	AuthEventsTotal     *prometheus.CounterVec
	CleanupRemovedTotal *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// Params holds dependencies for the metrics registry, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	DB     *gorm.DB `optional:"true"`
	Logger *slog.Logger
}

// New creates a registry with runtime collectors, the database pool stats and
// the service's own counters.
func New(params Params) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if params.DB != nil {
		if sqlDB, err := params.DB.DB(); err == nil {
			registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, params.Config.Env.ServiceName))
		} else {
			params.Logger.Warn("Database stats collector disabled", slog.Any("error", err))
		}
	}

	return newMetrics(registry)
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Total number of authentication events by outcome",
			},
			[]string{"event", "outcome"},
		),
		CleanupRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_removed_total",
				Help:      "Total number of expired records removed by the cleanup job",
			},
			[]string{"store"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.AuthEventsTotal,
		m.CleanupRemovedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// RecordAuthEvent counts one signup, login, refresh, logout or reset attempt.
func (m *Metrics) RecordAuthEvent(event, outcome string) {
	m.AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordCleanup adds the number of rows or keys a cleanup run removed.
func (m *Metrics) RecordCleanup(store string, removed int64) {
	if removed > 0 {
		m.CleanupRemovedTotal.WithLabelValues(store).Add(float64(removed))
	}
}

// Middleware records request counts and latency keyed by the route template.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		// The error handler has not run yet, so the response status may still be 200.
		status := c.Response().Status
		var httpErr *echo.HTTPError
		var appErr domainerrors.AppError
		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPCode()
		case errors.As(err, &httpErr):
			status = httpErr.Code
		case err != nil:
			status = http.StatusInternalServerError
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
