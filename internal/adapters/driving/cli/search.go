package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var (
	searchLimit     int
	searchDocIDs    []string
	searchThreshold float64
	searchJSON      bool
	searchContext   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Retrieves the chunks most relevant to a query.

Vector similarity is tried first. When no embedding is available, or nothing
clears the threshold, keyword search runs instead, then substring matching.
Each result shows which strategy scored it.

Keyword syntax: "exact phrase", OR between alternatives, -word to exclude.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringSliceVar(&searchDocIDs, "doc", nil, "restrict to these document IDs")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum vector similarity (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchContext, "context", false, "print the assembled grounding context")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errRetrievalNotConfigured
	}

	query := domain.RetrievalQuery{
		Text:        args[0],
		DocumentIDs: searchDocIDs,
		Threshold:   searchThreshold,
		Limit:       searchLimit,
	}
	results := retrievalService.Search(cmd.Context(), query)

	if searchContext && contextAssembler != nil {
		assembled := contextAssembler.Assemble(results)
		if searchJSON {
			return outputJSON(cmd, assembled)
		}
		cmd.Println(assembled.Text)
		return nil
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	printHeading(cmd, "Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		cmd.Printf("  %s %s %s\n",
			citeStyle.Sprintf("[%d]", i+1),
			displayTitle(r.DocumentTitle, r.DocumentID),
			faintStyle.Sprintf("(%.2f %s, chunk %d)", r.Score, r.ScoreKind, r.Position))
		cmd.Printf("      %s\n", truncate(oneLine(r.Content), 160))
		cmd.Println()
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
