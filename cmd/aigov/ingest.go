package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/ingestion"
)

var ingestFlags struct {
	dir   string
	watch bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index policy documents into the policy store",
	Long: `Index every policy document of the source directory into the policy store.

Documents are read, normalized, split into overlapping chunks and upserted.
Re-ingesting a document replaces its chunks; chunks left over from a longer
previous version are pruned when ingestion.prune_stale is set. A corrupt
document is reported and the remaining documents are still indexed.

Examples:
  # Index ingestion.source_dir
  aigov ingest

  # Index another directory and print a JSON report
  aigov ingest --dir ./policies -o json

  # Keep indexing as documents change
  aigov ingest --watch`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestFlags.dir, "dir", "d", "", "source directory (overrides ingestion.source_dir)")
	ingestCmd.Flags().BoolVarP(&ingestFlags.watch, "watch", "w", false, "keep running and re-index documents when they change")
}

// batchTable renders a batch report one document per row.
type batchTable ingestion.BatchReport

func (b batchTable) Header() []string {
	return []string{"DOCUMENT", "OUTCOME", "INDEXED", "SKIPPED", "PRUNED", "ERROR"}
}

func (b batchTable) Rows() [][]string {
	rows := make([][]string, 0, len(b.Results))
	for _, r := range b.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		rows = append(rows, []string{
			r.DocumentID,
			r.Outcome(),
			strconv.Itoa(r.ChunksIndexed),
			strconv.Itoa(r.ChunksSkipped),
			strconv.Itoa(r.ChunksPruned),
			errText,
		})
	}
	return rows
}

func runIngest(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	var opts appOptions
	if format == cli.FormatText {
		opts.OnProgress = cli.ProgressFunc(cli.NewProgressReporter(cmd.ErrOrStderr()))
	}

	return withApp(ctx, opts, func(a *app) error {
		dir := ingestFlags.dir
		if dir == "" {
			dir = a.cfg.Ingestion.SourceDir
		}

		out := cmd.OutOrStdout()
		report, err := a.pipeline.IngestDirectory(ctx, dir)
		if err != nil {
			return cli.NewCommandError("ingest", err)
		}
		if err := printBatch(out, format, report); err != nil {
			return err
		}

		if ingestFlags.watch {
			return watchDirectory(ctx, out, a, dir)
		}
		if report.Failed > 0 {
			return cli.NewCommandError("ingest",
				fmt.Errorf("%d of %d documents failed", report.Failed, report.Documents))
		}
		return nil
	})
}

func printBatch(w io.Writer, format cli.OutputFormat, report ingestion.BatchReport) error {
	if err := cli.NewFormatter(format).FormatTo(w, batchTable(report)); err != nil {
		return err
	}
	if format == cli.FormatText {
		fmt.Fprintf(w, "\n%d documents: %d succeeded, %d failed; %d chunks indexed, %d skipped, %d pruned\n",
			report.Documents, report.Succeeded, report.Failed,
			report.ChunksIndexed, report.ChunksSkipped, report.ChunksPruned)
	}
	return nil
}

func watchDirectory(ctx context.Context, w io.Writer, a *app, dir string) error {
	watcher, err := ingestion.NewWatcher(a.pipeline, ingestion.WatcherConfig{
		Dir:      dir,
		Debounce: a.cfg.Ingestion.WatchDebounce,
		OnFlush: func(report ingestion.BatchReport, removed []string) {
			fmt.Fprintf(w, "re-indexed %d documents (%d failed), removed %d\n",
				report.Documents, report.Failed, len(removed))
		},
	}, a.logger)
	if err != nil {
		return cli.NewCommandError("ingest", err)
	}
	defer watcher.Stop()

	fmt.Fprintf(w, "Watching %s, press Ctrl+C to stop\n", dir)
	if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("ingest", err)
	}
	return nil
}
