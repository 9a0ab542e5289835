package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/health"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/logging"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/metrics"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/tracing"
)

// Telemetry holds the logger, metrics collector, tracer and health checker
// built from one telemetry configuration section.
type Telemetry struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Health  *health.Checker
}

// Options customises New.
type Options struct {
	// Masker scrubs personal data from log attributes.
	Masker logging.Masker

	// Version is reported as the service version on spans.
	Version string

	// LogWriter overrides the log destination (defaults to stderr).
	LogWriter io.Writer
}

// New builds the telemetry stack. Metrics are always collected into a
// private registry; whether they are exposed is the server's decision.
func New(cfg *config.TelemetryConfig, opts Options) (*Telemetry, error) {
	logCfg := logging.FromConfig(cfg.Logging, opts.Masker)
	logCfg.Writer = opts.LogWriter

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var tracerOpts []tracing.Option
	if opts.Version != "" {
		tracerOpts = append(tracerOpts, tracing.WithServiceVersion(opts.Version))
	}
	tracer, err := tracing.New(&cfg.Tracing, tracerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return &Telemetry{
		Logger:  logger,
		Metrics: metrics.NewCollector(&cfg.Metrics, nil),
		Tracer:  tracer,
		Health:  health.New(health.SystemName, cfg.Health.CheckTimeout),
	}, nil
}

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.Tracer.Shutdown(ctx)
}
