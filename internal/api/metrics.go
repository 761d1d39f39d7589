package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "poleposition"
	httpSubsystem    = "http"
	toolsSubsystem   = "tools"
)

// Metrics holds the API's Prometheus collectors. Each Server registers its
// own set on a private registry so tests and multiple servers never collide.
type Metrics struct {
	// RequestsTotal counts HTTP requests by route, method and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds observes HTTP request latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// ToolCallsTotal counts tool calls from every HTTP transport by tool and
	// outcome ("success", "not_found", "bad_request", "rate_limited", "error").
	ToolCallsTotal *prometheus.CounterVec

	// ActiveSessions is the number of open WebSocket sessions.
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates the API collectors and registers them, together with
// the Go runtime and process collectors, on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),

		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: toolsSubsystem,
				Name:      "calls_total",
				Help:      "Total tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: toolsSubsystem,
				Name:      "active_sessions",
				Help:      "Number of open WebSocket tool sessions",
			},
		),
	}
}
