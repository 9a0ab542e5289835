package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/cli"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/ingestion"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
)

// excerptRunes bounds the chunk text shown per match in text output.
const excerptRunes = 60

var queryFlags struct {
	topK int
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search the policy store",
	Long: `Search the policy store for the chunks most similar to a text.

The text is masked exactly as a request would be before it is embedded, so
the results are the policies the orchestrator would consult.

Examples:
  aigov query "housing subsidy income limit"
  aigov query "pension eligibility" -k 5 -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVarP(&queryFlags.topK, "top-k", "k", 0, "number of matches (defaults to retrieval.top_k)")
}

// matchTable renders query matches best first.
type matchTable []policystore.Match

func (m matchTable) Header() []string {
	return []string{"RANK", "SCORE", "CHUNK", "SOURCE", "TEXT"}
}

func (m matchTable) Rows() [][]string {
	rows := make([][]string, 0, len(m))
	for i, match := range m {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(match.Score, 'f', 4, 64),
			match.Chunk.ID,
			match.Chunk.Metadata[ingestion.MetaSource],
			excerpt(match.Chunk.Text, excerptRunes),
		})
	}
	return rows
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func runQuery(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withApp(ctx, appOptions{}, func(a *app) error {
		k := queryFlags.topK
		if k == 0 {
			k = a.cfg.Retrieval.TopK
		}

		masked := a.redactor.Mask(strings.Join(args, " "))
		matches, err := a.store.Query(ctx, masked, k)
		if err != nil {
			return cli.NewCommandError("query", err)
		}
		return f.FormatTo(cmd.OutOrStdout(), matchTable(matches))
	})
}
