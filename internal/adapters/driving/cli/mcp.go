package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
your documents and ask grounded questions.

Tools: search_documents, ask, list_documents, get_document.

By default, the server communicates over stdio using JSON-RPC. Use --http to
serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  lexrag mcp

  # HTTP mode (for MCP Inspector, remote access)
  lexrag mcp --http localhost:8080

Desktop assistant configuration:
  {
    "mcpServers": {
      "lexrag": {
        "command": "/path/to/lexrag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: retrievalService,
		Chat:      chatService,
		Document:  documentService,
	})
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
