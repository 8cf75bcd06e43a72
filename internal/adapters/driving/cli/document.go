package cli

import (
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var (
	documentShowChunks  bool
	documentShowContent bool
)

func init() {
	documentGetCmd.Flags().BoolVar(&documentShowChunks, "chunks", false, "list the document's chunks")
	documentGetCmd.Flags().BoolVar(&documentShowContent, "content", false, "print the full document text")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %s %s\n", docs[i].ID, docs[i].Title, faintStyle.Sprintf("[%s]", docs[i].Visibility))
	}
	cmd.Println()
	cmd.Printf("Total: %s\n", plural(len(docs), "document"))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	ctx := cmd.Context()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return err
	}
	chunks, err := documentService.Chunks(ctx, doc.ID)
	if err != nil {
		return err
	}

	degraded := 0
	for i := range chunks {
		if chunks[i].IsDegraded() {
			degraded++
		}
	}

	printHeading(cmd, "Document Details:")
	cmd.Printf("  ID:         %s\n", doc.ID)
	cmd.Printf("  Title:      %s\n", doc.Title)
	cmd.Printf("  Visibility: %s\n", doc.Visibility)
	if doc.URI != "" {
		cmd.Printf("  URI:        %s\n", doc.URI)
	}
	if format, ok := doc.Metadata["format"].(string); ok {
		cmd.Printf("  Format:     %s\n", format)
	}
	cmd.Printf("  Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:    %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Chunks:     %d (%d without embedding)\n", len(chunks), degraded)

	if documentShowChunks {
		cmd.Println()
		printHeading(cmd, "Chunks:")
		for i := range chunks {
			c := &chunks[i]
			cmd.Printf("  #%d %s %s\n", c.Position, c.ID, faintStyle.Sprintf("tags: %s", formatTags(c.Tags())))
			cmd.Printf("      %s\n", truncate(oneLine(c.Content), 120))
		}
	}
	if documentShowContent {
		cmd.Println()
		cmd.Println(doc.Content)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}
