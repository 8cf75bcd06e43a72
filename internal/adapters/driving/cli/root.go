// Package cli implements the lexrag command line with cobra.
//
// Commands talk to core through the driving ports only. The services are
// wired by a Bootstrap hook before each command runs, so global flags such
// as --ephemeral can change which stores back them.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// annotationNoServices marks commands that run without wiring services.
const annotationNoServices = "lexrag/no-services"

var version = "dev"

// Global flags.
var (
	verbose   bool
	ephemeral bool
)

// Services wired for the current run.
var (
	retrievalService driving.RetrievalService
	contextAssembler driving.ContextAssembler
	chatService      driving.ChatService
	documentService  driving.DocumentService
	ingestService    driving.IngestService
	settingsService  driving.SettingsService
	supportsFile     func(path string) bool
)

var (
	bootstrap Bootstrap
	cleanup   func() error
)

// Services bundles the driving ports the commands call.
type Services struct {
	Retrieval driving.RetrievalService
	Assembler driving.ContextAssembler
	Chat      driving.ChatService
	Document  driving.DocumentService
	Ingest    driving.IngestService
	Settings  driving.SettingsService

	// Supports reports whether a file can be normalised. Used by watch.
	Supports func(path string) bool
}

// Options carries the global flags into Bootstrap.
type Options struct {
	Verbose   bool
	Ephemeral bool
}

// Bootstrap wires services for one command run. The returned cleanup, if
// any, runs after the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var rootCmd = &cobra.Command{
	Use:   "lexrag",
	Short: "Grounded retrieval over your legal documents",
	Long: `lexrag ingests contracts, policies and correspondence, splits them into
chunks, embeds them and answers questions with numbered citations.

Retrieval falls back from vector search to keyword search to substring
matching, so it keeps working when the embedding provider is down.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "use in-memory stores that vanish on exit")
}

// SetBootstrap installs the hook that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	retrievalService = s.Retrieval
	contextAssembler = s.Assembler
	chatService = s.Chat
	documentService = s.Document
	ingestService = s.Ingest
	settingsService = s.Settings
	supportsFile = s.Supports
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as watch and mcp.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] == "true" || bootstrap == nil {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), Options{Verbose: verbose, Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if cleanup == nil {
		return nil
	}
	done := cleanup
	cleanup = nil
	return done()
}

var (
	errRetrievalNotConfigured = errors.New("retrieval service not configured")
	errChatNotConfigured      = errors.New("chat service not configured")
	errDocumentNotConfigured  = errors.New("document service not configured")
	errIngestNotConfigured    = errors.New("ingest service not configured")
	errSettingsNotConfigured  = errors.New("settings service not configured")
)
