// Package telemetry bundles the observability stack of the orchestrator.
//
// # Components
//
//   - logging: Structured logging with PII scrubbing
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry distributed tracing
//   - health: Liveness and readiness endpoints
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, redactor, version)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.Logger.Info("server starting", "address", cfg.Server.ListenAddress)
//	ctx, span := tel.Tracer.Start(ctx, "operation")
//	defer span.End()
package telemetry
