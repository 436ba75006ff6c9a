// Package metrics declares the Prometheus collectors exported by the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts completed request-response cycles by outcome (ok or an error kind)
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal_assistant",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome",
		},
		[]string{"outcome"},
	)

	// StageFailuresTotal counts failures per orchestration stage, fatal or not
	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal_assistant",
			Subsystem: "chat",
			Name:      "stage_failures_total",
			Help:      "Total failures by orchestration stage",
		},
		[]string{"stage"},
	)

	// GenerationDuration observes generator latency
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legal_assistant",
			Subsystem: "chat",
			Name:      "generation_duration_seconds",
			Help:      "Generator call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	// BackgroundTasksInFlight tracks best-effort tasks still running
	BackgroundTasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legal_assistant",
			Subsystem: "chat",
			Name:      "background_tasks_in_flight",
			Help:      "Best-effort tasks currently running",
		},
	)

	// RequestsTotal counts HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal_assistant",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legal_assistant",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)
)
