package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/ingestion"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
	ingest        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the request API",
	Long: `Start the request API with the specified configuration.

The server accepts citizen requests on POST /api/submit_request and answers
with the masked request, the policies consulted and the compliance decision.
Liveness, readiness and metrics endpoints are served alongside.

With ingestion.watch enabled (or --watch) documents of the source directory
are re-indexed as they change. With ingestion.schedule set the whole source
directory is re-indexed on that cron schedule.

Examples:
  # Start with default config
  aigov serve

  # Start with custom config
  aigov serve --config /etc/aigov/config.yaml

  # Index the source directory first and keep it in sync
  aigov serve --ingest --watch

  # Validate config without starting server
  aigov serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "re-index documents of the source directory when they change")
	serveCmd.Flags().BoolVar(&serveFlags.ingest, "ingest", false, "index the source directory before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.watch {
		cfg.Ingestion.Watch = true
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		if cerr := a.close(context.Background()); cerr != nil {
			a.logger.Warn("shutdown incomplete", "error", cerr)
		}
	}()

	fmt.Fprintf(out, "aigov %s\n", Version)
	fmt.Fprintf(out, "✓ Policy store ready (%s, %d chunks)\n", a.store.Backend(), a.store.Count())

	if serveFlags.ingest {
		report, err := a.pipeline.IngestDirectory(ctx, cfg.Ingestion.SourceDir)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		fmt.Fprintf(out, "✓ Indexed %d of %d documents (%d chunks)\n",
			report.Succeeded, report.Documents, report.ChunksIndexed)
	}

	if cfg.Ingestion.Schedule != "" {
		scheduler := ingestion.NewScheduler(a.pipeline, cfg.Ingestion.SourceDir, cfg.Ingestion.Schedule, a.logger)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			fmt.Fprintf(out, "✓ Scheduled re-ingestion (next run %s)\n", next.Format("2006-01-02 15:04:05"))
		}
	}

	if cfg.Ingestion.Watch {
		watcher, err := ingestion.NewWatcher(a.pipeline, ingestion.WatcherConfig{
			Dir:      cfg.Ingestion.SourceDir,
			Debounce: cfg.Ingestion.WatchDebounce,
		}, a.logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("source directory watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Fprintf(out, "✓ Watching %s\n", cfg.Ingestion.SourceDir)
	}

	srv := a.newServer()
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
