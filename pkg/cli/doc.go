/*
Package cli provides command-line interface utilities for the aigov command.

Output Formatting:

Command results are printed as text, JSON or CSV. Results that implement
Table are rendered as aligned columns in text mode and as rows in CSV mode:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, record); err != nil {
		return err
	}

Progress Reporting:

Directory ingestion reports per-document progress:

	progress := cli.NewProgressReporter(os.Stderr)
	opts.OnProgress = cli.ProgressFunc(progress)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
