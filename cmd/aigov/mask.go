package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/redaction"
)

var maskFlags struct {
	spans bool
}

var maskCmd = &cobra.Command{
	Use:   "mask <text>",
	Short: "Replace personal data in a text with placeholders",
	Long: `Replace personal data in a text with typed placeholders such as <PERSON>.

The redaction section of the configuration selects the entity types.
No policy store is opened.

Examples:
  aigov mask "I am Deepak Kumar from Mumbai, call 9876543210"
  aigov mask --spans "Mail priya@example.in"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMask,
}

func init() {
	rootCmd.AddCommand(maskCmd)

	maskCmd.Flags().BoolVar(&maskFlags.spans, "spans", false, "also list the detected entity spans")
}

// maskResult is the output of the mask command.
type maskResult struct {
	Text  string           `json:"masked_input"`
	Spans []redaction.Span `json:"spans"`
}

func (m maskResult) Header() []string {
	return []string{"ENTITY", "START", "END", "CONFIDENCE"}
}

func (m maskResult) Rows() [][]string {
	rows := make([][]string, 0, len(m.Spans))
	for _, s := range m.Spans {
		rows = append(rows, []string{
			string(s.Entity),
			strconv.Itoa(s.Start),
			strconv.Itoa(s.End),
			strconv.FormatFloat(s.Confidence, 'f', 2, 64),
		})
	}
	return rows
}

func runMask(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	redactor, err := newRedactor(cfg.Redaction)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	res := redactor.Redact(strings.Join(args, " "))
	result := maskResult{Text: res.Text, Spans: res.Spans}
	if result.Spans == nil {
		result.Spans = []redaction.Span{}
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON, cli.FormatCSV:
		return cli.NewFormatter(format).FormatTo(out, result)
	}

	fmt.Fprintln(out, result.Text)
	if maskFlags.spans && len(result.Spans) > 0 {
		fmt.Fprintln(out)
		return cli.NewFormatter(cli.FormatText).FormatTo(out, result)
	}
	return nil
}
