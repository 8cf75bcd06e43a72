package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui"
)

var (
	chatDocIDs []string
	chatLimit  int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat interface",
	Long: `Open a full-screen terminal interface for asking questions about your
documents. Answers list the passages they cite. The search and documents
views let you inspect what retrieval returns.

Controls:
  Enter    - Ask / Open
  Tab      - Switch between chat, search and documents
  Ctrl+N   - Start a new conversation
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVar(&chatDocIDs, "doc", nil, "restrict answers to these document IDs")
	chatCmd.Flags().IntVarP(&chatLimit, "limit", "n", 10, "results shown per search")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat crashed: %v", r)
		}
	}()

	app, err := newChatApp(cmd)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

func newChatApp(cmd *cobra.Command) (*tui.App, error) {
	if chatService == nil {
		return nil, errChatNotConfigured
	}

	app, err := tui.NewApp(tui.NewPorts(chatService, retrievalService, documentService))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat interface: %w", err)
	}
	app.WithContext(cmd.Context())
	app.SetDocumentScope(chatDocIDs)
	app.SetSearchLimit(chatLimit)
	return app, nil
}
