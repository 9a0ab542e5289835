package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// IngestionMetrics tracks the ingestion pipeline and the policy store.
//
// Metrics:
//   - aigov_orchestrator_documents_ingested_total: Documents by outcome
//   - aigov_orchestrator_chunks_total: Chunks by result (indexed, skipped, pruned)
//   - aigov_orchestrator_store_errors_total: Failed store operations
type IngestionMetrics struct {
	documentsTotal *prometheus.CounterVec
	chunksTotal    *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
}

// NewIngestionMetrics creates and registers ingestion metrics.
func NewIngestionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *IngestionMetrics {
	im := &IngestionMetrics{
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "documents_ingested_total",
				Help:      "Total number of policy documents ingested by outcome",
			},
			[]string{"outcome"},
		),

		chunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "chunks_total",
				Help:      "Total number of policy chunks by ingestion result",
			},
			[]string{"result"},
		),

		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_errors_total",
				Help:      "Total number of failed policy store operations",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(im.documentsTotal, im.chunksTotal, im.storeErrors)

	return im
}

// RecordDocument records one ingested document.
func (im *IngestionMetrics) RecordDocument(outcome string, indexed, skipped, pruned int) {
	im.documentsTotal.WithLabelValues(outcome).Inc()
	if indexed > 0 {
		im.chunksTotal.WithLabelValues("indexed").Add(float64(indexed))
	}
	if skipped > 0 {
		im.chunksTotal.WithLabelValues("skipped").Add(float64(skipped))
	}
	if pruned > 0 {
		im.chunksTotal.WithLabelValues("pruned").Add(float64(pruned))
	}
}

// RecordStoreError counts a failed store operation.
func (im *IngestionMetrics) RecordStoreError(operation string) {
	im.storeErrors.WithLabelValues(operation).Inc()
}
