package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// RedactionMetrics tracks masked personal data.
//
// Metrics:
//   - aigov_orchestrator_entities_redacted_total: Masked spans by entity type
type RedactionMetrics struct {
	entitiesTotal *prometheus.CounterVec
}

// NewRedactionMetrics creates and registers redaction metrics.
func NewRedactionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RedactionMetrics {
	rm := &RedactionMetrics{
		entitiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "entities_redacted_total",
				Help:      "Total number of personal data spans replaced by placeholders",
			},
			[]string{"entity"},
		),
	}

	registry.MustRegister(rm.entitiesTotal)

	return rm
}

// RecordEntities adds count masked spans for entity.
func (rm *RedactionMetrics) RecordEntities(entity string, count int) {
	rm.entitiesTotal.WithLabelValues(entity).Add(float64(count))
}
