package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var (
	ingestTitle  string
	ingestShared bool
	ingestTags   []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|glob|-]...",
	Short: "Ingest documents",
	Long: `Normalises, chunks, embeds and stores documents.

Arguments may be files, directories (ingested recursively), doublestar globs
such as 'contracts/**/*.md', or '-' to read text from stdin. Re-ingesting a
file replaces its previous chunks.

Chunks whose embedding fails are still stored and remain searchable by
keyword.`,
	Example: `  lexrag ingest msa.docx
  lexrag ingest 'policies/**/*.{md,txt}' --tag policy
  pbpaste | lexrag ingest - --title "Side letter"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (single file or stdin only)")
	ingestCmd.Flags().BoolVar(&ingestShared, "shared", false, "mark documents as shared rather than personal")
	ingestCmd.Flags().StringSliceVar(&ingestTags, "tag", nil, "tag every chunk (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}

func ingestOptions() domain.IngestOptions {
	visibility := domain.VisibilityPersonal
	if ingestShared {
		visibility = domain.VisibilityShared
	}
	return domain.IngestOptions{
		Title:      ingestTitle,
		Visibility: visibility,
		Tags:       ingestTags,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if ingestTitle != "" && len(args) > 1 {
		return errors.New("--title applies to a single document")
	}

	opts := ingestOptions()
	var reports []domain.IngestReport
	for _, arg := range args {
		got, err := ingestArg(cmd, arg, opts)
		if err != nil {
			return err
		}
		reports = append(reports, got...)
	}

	printIngestSummary(cmd, reports)
	return nil
}

func ingestArg(cmd *cobra.Command, arg string, opts domain.IngestOptions) ([]domain.IngestReport, error) {
	ctx := cmd.Context()

	if arg == "-" {
		report, err := ingestStdin(cmd, opts)
		if err != nil {
			return nil, err
		}
		return []domain.IngestReport{*report}, nil
	}

	pattern := arg
	if !isGlob(arg) {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", arg, err)
		}
		if !info.IsDir() {
			report, err := ingestService.IngestFile(ctx, arg, opts)
			if err != nil {
				return nil, fmt.Errorf("ingest %s: %w", arg, err)
			}
			return []domain.IngestReport{*report}, nil
		}
		pattern = filepath.ToSlash(filepath.Join(arg, "**", "*"))
	}

	reports, err := ingestService.IngestGlob(ctx, pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", arg, err)
	}
	if len(reports) == 0 {
		printWarning(cmd, "No supported files matched %s", arg)
	}
	return reports, nil
}

// ingestStdin creates a document from piped text and processes it.
func ingestStdin(cmd *cobra.Command, opts domain.IngestOptions) (*domain.IngestReport, error) {
	if documentService == nil {
		return nil, errDocumentNotConfigured
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("%w: stdin is empty", domain.ErrInvalidInput)
	}

	title := opts.Title
	if title == "" {
		title = "stdin " + time.Now().Format("2006-01-02 15:04")
	}
	doc, err := documentService.Create(cmd.Context(), domain.Document{
		Title:      title,
		Content:    text,
		Visibility: opts.Visibility,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	report, err := ingestService.ProcessDocumentText(cmd.Context(), doc.ID, text, opts.Tags)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", doc.ID, err)
	}
	report.Title = doc.Title
	return report, nil
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

func printIngestSummary(cmd *cobra.Command, reports []domain.IngestReport) {
	var chunks, degraded, failed int
	for i := range reports {
		r := &reports[i]
		cmd.Printf("  %s  %s %s\n", r.DocumentID, displayTitle(r.Title, r.DocumentID),
			faintStyle.Sprintf("(%s, %s)", plural(r.Stored, "chunk"), r.Duration.Round(time.Millisecond)))
		chunks += r.Stored
		degraded += r.Degraded
		failed += r.Failed
	}

	cmd.Println()
	cmd.Printf("Ingested %s, %s stored.\n", plural(len(reports), "document"), plural(chunks, "chunk"))
	if degraded > 0 {
		printWarning(cmd, "%s stored without an embedding; they are searchable by keyword only.",
			plural(degraded, "chunk"))
	}
	if failed > 0 {
		printWarning(cmd, "%s could not be stored; run with --verbose for details.", plural(failed, "chunk"))
	}
}
