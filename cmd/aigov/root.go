package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "aigov",
	Short: "AI governance compliance gateway",
	Long: `aigov screens citizen requests against government policy.

Every request is processed in three stages:
  - personal data is replaced with typed placeholders
  - the most relevant policy passages are retrieved from the policy store
  - a decision strategy records a compliance status for human review

Policy documents are indexed into the store with "aigov ingest".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, csv)")
}
