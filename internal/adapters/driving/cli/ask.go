package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var (
	askDocIDs []string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from ingested documents",
	Long: `Retrieves context for the question, sends it to the configured LLM and
prints the answer with numbered citations.

When nothing relevant is found the model is told so explicitly and the
answer is marked as ungrounded.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askDocIDs, "doc", nil, "restrict to these document IDs")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	answer, err := chatService.Ask(cmd.Context(), args[0], nil, askDocIDs)
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return fmt.Errorf("%w: run 'lexrag settings set llm.provider <provider>' first", err)
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	cmd.Println()
	if !answer.Grounded {
		printWarning(cmd, "No supporting passages were found; this answer is not grounded in your documents.")
		return nil
	}
	printHeading(cmd, "Sources:")
	printSources(cmd, answer.Sources)
	return nil
}
