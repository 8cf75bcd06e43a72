package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// Colours honour NO_COLOR and switch off when stdout is not a terminal.
var (
	headingStyle = color.New(color.Bold)
	citeStyle    = color.New(color.FgCyan, color.Bold)
	warnStyle    = color.New(color.FgYellow)
	faintStyle   = color.New(color.Faint)
)

func printHeading(cmd *cobra.Command, text string) {
	cmd.Println(headingStyle.Sprint(text))
}

func printWarning(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(warnStyle.Sprintf(format, args...))
}

// printSources renders citations as "[n] title (0.83 vector)".
func printSources(cmd *cobra.Command, sources []domain.Source) {
	for _, src := range sources {
		cmd.Printf("  %s %s %s\n",
			citeStyle.Sprintf("[%d]", src.Index),
			displayTitle(src.DocumentTitle, src.DocumentID),
			faintStyle.Sprintf("(%.2f %s)", src.Score, src.ScoreKind))
		if src.Snippet != "" {
			cmd.Printf("      %s\n", oneLine(src.Snippet))
		}
	}
}

func displayTitle(title, id string) string {
	if title == "" {
		return id
	}
	return title
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
