package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// DecisionMetrics tracks the decision engine and the retrieval feeding it.
//
// Metrics:
//   - aigov_orchestrator_decisions_total: Decisions by strategy and status
//   - aigov_orchestrator_retrieval_matches: Policy chunks returned per query
type DecisionMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	retrievalMatches prometheus.Histogram
}

// NewDecisionMetrics creates and registers decision metrics.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decisions_total",
				Help:      "Total number of decisions by strategy and status",
			},
			[]string{"strategy", "status"},
		),

		retrievalMatches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrieval_matches",
				Help:      "Number of policy chunks returned per query",
				Buckets:   []float64{0, 1, 2, 5, 10, 20},
			},
		),
	}

	registry.MustRegister(dm.decisionsTotal, dm.retrievalMatches)

	return dm
}

// RecordDecision counts a decision.
func (dm *DecisionMetrics) RecordDecision(strategy, status string) {
	dm.decisionsTotal.WithLabelValues(strategy, status).Inc()
}

// RecordRetrieval observes a retrieval result size.
func (dm *DecisionMetrics) RecordRetrieval(matches int) {
	dm.retrievalMatches.Observe(float64(matches))
}
