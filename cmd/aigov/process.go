package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/orchestrator"
)

var processCmd = &cobra.Command{
	Use:   "process <text>",
	Short: "Run one request through the pipeline and print its audit record",
	Long: `Run one citizen request through redaction, retrieval and decision and
print the resulting audit record as JSON, exactly as the request API would
return it.

Example:
  aigov process "I am Deepak Kumar from Mumbai and need a housing subsidy"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, appOptions{}, func(a *app) error {
		record, err := a.orchestrator.Process(ctx, strings.Join(args, " "))
		if err != nil {
			var inputErr *orchestrator.InputError
			if errors.As(err, &inputErr) {
				return err
			}
			return cli.NewCommandError("process", err)
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), record)
	})
}
