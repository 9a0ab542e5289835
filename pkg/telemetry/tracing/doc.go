// Package tracing provides OpenTelemetry distributed tracing for the policy
// orchestrator.
//
// # Overview
//
// Each submission produces one trace: a root span for the request and a
// child span per stage (redact, retrieve, decide). Ingestion produces a span
// per document. Spans are exported over OTLP gRPC to any collector that
// speaks it (Jaeger, Tempo, the OpenTelemetry Collector).
//
// # Trace Context Propagation
//
// HTTPMiddleware extracts W3C Trace Context (traceparent, tracestate) from
// incoming requests so a caller's trace continues through the orchestrator:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling
//
// A parent-based sampler honours the caller's decision. Root spans are
// sampled with probability telemetry.tracing.sample_ratio.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "orchestrator.redact")
//	defer span.End()
//
// Attributes never carry raw citizen input. Only masked text, counts and
// identifiers are recorded.
package tracing
