package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "aigov.*" namespace.
const (
	AttrSessionID   = "aigov.session_id"
	AttrRequestID   = "aigov.request_id"
	AttrStage       = "aigov.stage"
	AttrDocumentID  = "aigov.document.id"
	AttrDocumentCID = "aigov.document.cid"

	AttrChunksIndexed = "aigov.chunks.indexed"
	AttrChunksSkipped = "aigov.chunks.skipped"
	AttrChunksPruned  = "aigov.chunks.pruned"

	AttrRedactedTotal  = "aigov.redaction.total"
	AttrRedactedPrefix = "aigov.redaction."

	AttrRetrievalK       = "aigov.retrieval.k"
	AttrRetrievalMatches = "aigov.retrieval.matches"
	AttrRetrievalTop     = "aigov.retrieval.top_score"

	AttrDecisionStrategy   = "aigov.decision.strategy"
	AttrDecisionStatus     = "aigov.decision.status"
	AttrDecisionConfidence = "aigov.decision.confidence"
)

// SetSessionAttribute records the per-request session id.
func SetSessionAttribute(span trace.Span, sessionID string) {
	if sessionID != "" {
		span.SetAttributes(attribute.String(AttrSessionID, sessionID))
	}
}

// SetRedactionAttributes records how many spans of each entity type were
// masked. Counts only; never the masked values.
func SetRedactionAttributes(span trace.Span, counts map[string]int) {
	total := 0
	attrs := make([]attribute.KeyValue, 0, len(counts)+1)
	for entity, n := range counts {
		total += n
		attrs = append(attrs, attribute.Int(AttrRedactedPrefix+entity, n))
	}
	attrs = append(attrs, attribute.Int(AttrRedactedTotal, total))
	span.SetAttributes(attrs...)
}

// SetRetrievalAttributes records the requested depth and the result.
func SetRetrievalAttributes(span trace.Span, k, matches int, topScore float64) {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrRetrievalK, k),
		attribute.Int(AttrRetrievalMatches, matches),
	}
	if matches > 0 {
		attrs = append(attrs, attribute.Float64(AttrRetrievalTop, topScore))
	}
	span.SetAttributes(attrs...)
}

// SetDecisionAttributes records the decision outcome.
func SetDecisionAttributes(span trace.Span, strategy, status string, confidence float64) {
	span.SetAttributes(
		attribute.String(AttrDecisionStrategy, strategy),
		attribute.String(AttrDecisionStatus, status),
		attribute.Float64(AttrDecisionConfidence, confidence),
	)
}

// SetDocumentAttributes records the outcome of ingesting one document.
func SetDocumentAttributes(span trace.Span, documentID, cid string, indexed, skipped, pruned int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrDocumentID, documentID),
		attribute.Int(AttrChunksIndexed, indexed),
		attribute.Int(AttrChunksSkipped, skipped),
		attribute.Int(AttrChunksPruned, pruned),
	}
	if cid != "" {
		attrs = append(attrs, attribute.String(AttrDocumentCID, cid))
	}
	span.SetAttributes(attrs...)
}
