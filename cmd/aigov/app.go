package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/decision"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/embedding"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/ingestion"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/orchestrator"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/redaction"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/server"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/health"
)

// storeCheckName is the readiness check guarding the policy store.
const storeCheckName = "policy_store"

// app holds the components shared by the commands.
type app struct {
	cfg          *config.Config
	telemetry    *telemetry.Telemetry
	logger       *slog.Logger
	redactor     *redaction.Redactor
	store        *policystore.Store
	pipeline     *ingestion.Pipeline
	orchestrator *orchestrator.Orchestrator
}

// appOptions customises newApp.
type appOptions struct {
	// LogWriter receives the log output (defaults to stderr).
	LogWriter io.Writer

	// OnProgress is handed to the ingestion pipeline.
	OnProgress func(done, total int)
}

// loadConfig reads the --config file with environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// newRedactor builds the redactor of the redaction section.
func newRedactor(cfg config.RedactionConfig) (*redaction.Redactor, error) {
	entities := make([]redaction.EntityType, 0, len(cfg.Entities))
	for _, name := range cfg.Entities {
		e, err := redaction.ParseEntityType(name)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return redaction.New(redaction.Config{
		Entities:      entities,
		Locations:     cfg.Locations,
		MinConfidence: cfg.MinConfidence,
	})
}

// newApp wires the components described by cfg. The caller must close the
// returned app.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	redactor, err := newRedactor(cfg.Redaction)
	if err != nil {
		return nil, fmt.Errorf("failed to create redactor: %w", err)
	}

	tel, err := telemetry.New(&cfg.Telemetry, telemetry.Options{
		Masker:    redactor,
		Version:   Version,
		LogWriter: opts.LogWriter,
	})
	if err != nil {
		return nil, err
	}
	logger := tel.Logger.Slog()

	embedder, err := embedding.NewHashingEmbedder(cfg.Store.Dimensions)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := policystore.Open(ctx, policystore.Options{
		SQLite: policystore.SQLiteConfig{
			Path:        cfg.Store.Path,
			Driver:      cfg.Store.Driver,
			WALMode:     cfg.Store.WALMode,
			BusyTimeout: cfg.Store.BusyTimeout,
		},
		Collection:    cfg.Store.Collection,
		Embedder:      embedder,
		MinSimilarity: cfg.Retrieval.MinSimilarity,
		Logger:        logger,
	})
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open policy store: %w", err)
	}

	a := &app{
		cfg:       cfg,
		telemetry: tel,
		logger:    logger,
		redactor:  redactor,
		store:     store,
	}

	tel.Health.RegisterCheck(storeCheckName, store.Ping)
	if err := tel.Metrics.RegisterStoreSize(func() float64 { return float64(store.Count()) }); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to register store metrics: %w", err)
	}

	a.pipeline, err = ingestion.NewPipeline(store, ingestion.ConfigFrom(cfg.Ingestion), ingestion.Options{
		Logger:     logger,
		Metrics:    tel.Metrics,
		Tracer:     tel.Tracer,
		OnProgress: opts.OnProgress,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	strategy, err := decision.Lookup(cfg.Decision.Strategy)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.orchestrator, err = orchestrator.New(redactor, store, strategy, orchestrator.Options{
		TopK:    cfg.Retrieval.TopK,
		Logger:  logger,
		Metrics: tel.Metrics,
		Tracer:  tel.Tracer,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	return a, nil
}

// newServer builds the request API around the orchestrator.
func (a *app) newServer() *server.Server {
	metricsPath := ""
	if a.cfg.Telemetry.Metrics.Enabled {
		metricsPath = a.cfg.Telemetry.Metrics.Path
	}

	return server.New(&a.cfg.Server, a.orchestrator, server.Options{
		Logger:       a.logger,
		Metrics:      a.telemetry.Metrics,
		Tracer:       a.telemetry.Tracer,
		Health:       a.telemetry.Health,
		HealthConfig: a.cfg.Telemetry.Health,
		Version:      versionInfo(),
		MetricsPath:  metricsPath,
	})
}

// close releases the store and flushes pending spans.
func (a *app) close(ctx context.Context) error {
	return errors.Join(a.store.Close(), a.telemetry.Shutdown(ctx))
}

func versionInfo() health.VersionInfo {
	return health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// withApp loads the configuration, runs fn with a wired app and closes it.
func withApp(ctx context.Context, opts appOptions, fn func(*app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(context.Background()); cerr != nil {
			a.logger.Warn("shutdown incomplete", "error", cerr)
		}
	}()

	return fn(a)
}

// formatter returns the formatter selected by --output.
func formatter() (cli.Formatter, error) {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return cli.NewFormatter(format), nil
}
