// Package metrics provides Prometheus metrics collection for the policy
// orchestrator.
//
// # Metrics Categories
//
//   - Request Metrics: submitted requests by status, end-to-end and
//     per-stage durations
//   - Redaction Metrics: entities masked by type
//   - Decision Metrics: decisions by strategy and status, retrieval depth
//   - Ingestion Metrics: documents by outcome, chunks indexed, skipped and
//     pruned, store errors and store size
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordStage("redact", 2*time.Millisecond)
//	collector.RecordRedaction("PERSON", 1)
//	collector.RecordDecision("reference", "PENDING_REVIEW")
//	collector.RecordRequest("success", 8*time.Millisecond)
//
//	http.Handle("/metrics", collector.Handler())
//
// Every Record method is safe to call on a nil *Collector, so components
// accept an optional collector without guarding each call.
package metrics
