package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// RequestMetrics tracks submissions through the orchestrator.
//
// Metrics:
//   - aigov_orchestrator_requests_total: Submissions by status
//   - aigov_orchestrator_request_duration_seconds: End-to-end duration
//   - aigov_orchestrator_stage_duration_seconds: Duration per stage
//   - aigov_orchestrator_stage_errors_total: Failures per stage
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of citizen requests processed",
			},
			[]string{"status"},
		),

		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of request processing in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
			[]string{"stage"},
		),

		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_errors_total",
				Help:      "Total number of failures by pipeline stage",
			},
			[]string{"stage"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.stageDuration,
		rm.stageErrors,
	)

	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(status).Inc()
	rm.requestDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of a stage.
func (rm *RequestMetrics) RecordStage(stage string, duration time.Duration) {
	rm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageError counts a stage failure.
func (rm *RequestMetrics) RecordStageError(stage string) {
	rm.stageErrors.WithLabelValues(stage).Inc()
}
