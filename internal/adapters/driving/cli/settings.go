package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking and retrieval defaults.

Settings live in ~/.lexrag/config.toml. API keys are read from the
OPENAI_API_KEY and ANTHROPIC_API_KEY environment variables, or a .env file,
and are never written to the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long:  "Change one setting. Valid keys:\n\n  " + strings.Join(settingKeys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider interactively",
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider interactively",
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	printHeading(cmd, "[Embedding]")
	cmd.Printf("  Provider:   %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model:      %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	printEndpoint(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	cmd.Printf("  Status:     %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	printHeading(cmd, "[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider:   (not set)")
	} else {
		cmd.Printf("  Provider:   %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model:      %s\n", settings.LLM.Model)
		printEndpoint(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	}
	cmd.Printf("  Status:     %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	printHeading(cmd, "[Chunking]")
	cmd.Printf("  Max chunk size:   %d\n", settings.Chunking.MaxChunkSize)
	cmd.Printf("  Min chunk length: %d\n", settings.Chunking.MinChunkLength)
	cmd.Println()

	printHeading(cmd, "[Retrieval]")
	cmd.Printf("  Limit:          %d\n", settings.Retrieval.Limit)
	cmd.Printf("  Threshold:      %.2f\n", settings.Retrieval.Threshold)
	cmd.Printf("  Backend:        %s\n", settings.Retrieval.Backend)
	cmd.Printf("  Snippet length: %d\n", settings.Retrieval.SnippetLength)
	if settings.Retrieval.SynonymsFile != "" {
		cmd.Printf("  Synonyms:       %s\n", settings.Retrieval.SynonymsFile)
	}
	cmd.Println()

	printHeading(cmd, "[Ingest]")
	cmd.Printf("  Rate: %.1f/s (burst %d)\n", settings.Ingest.RatePerSecond, settings.Ingest.Burst)
	if settings.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.DataDir)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		printWarning(cmd, "Warning: %v", err)
		cmd.Println("Run 'lexrag settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printEndpoint(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		cmd.Printf("  Base URL:   %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key:    %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key:    (not set)\n")
		}
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// settingSetters maps config keys onto AppSettings fields.
var settingSetters = map[string]func(s *domain.AppSettings, v string) error{
	"embedding.model":    func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	"embedding.base_url": func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	"embedding.dimensions": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Embedding.Dimensions, v)
	},
	"llm.model":    func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	"llm.base_url": func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	"chunking.max_chunk_size": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Chunking.MaxChunkSize, v)
	},
	"chunking.min_chunk_length": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Chunking.MinChunkLength, v)
	},
	"retrieval.limit": func(s *domain.AppSettings, v string) error {
		if err := setPositiveInt(&s.Retrieval.Limit, v); err != nil {
			return err
		}
		if s.Retrieval.Limit > domain.MaxRetrievalLimit {
			return fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidInput, domain.MaxRetrievalLimit)
		}
		return nil
	},
	"retrieval.threshold": func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidInput)
		}
		s.Retrieval.Threshold = f
		return nil
	},
	"retrieval.backend": func(s *domain.AppSettings, v string) error {
		backend := domain.SearchBackend(v)
		if !backend.IsValid() {
			return fmt.Errorf("%w: backend must be sqlite or bleve", domain.ErrInvalidInput)
		}
		s.Retrieval.Backend = backend
		return nil
	},
	"retrieval.synonyms_file": func(s *domain.AppSettings, v string) error { s.Retrieval.SynonymsFile = v; return nil },
	"retrieval.snippet_length": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Retrieval.SnippetLength, v)
	},
	"ingest.rate_per_second": func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: rate must be a non-negative number", domain.ErrInvalidInput)
		}
		s.Ingest.RatePerSecond = f
		return nil
	},
	"ingest.burst":     func(s *domain.AppSettings, v string) error { return setPositiveInt(&s.Ingest.Burst, v) },
	"storage.data_dir": func(s *domain.AppSettings, v string) error { s.DataDir = v; return nil },
}

func settingKeys() []string {
	keys := []string{"embedding.provider", "llm.provider"}
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setPositiveInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: %q is not a positive integer", domain.ErrInvalidInput, v)
	}
	*dst = n
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	key, value := args[0], strings.TrimSpace(args[1])

	// Provider changes also reset model and dimensions to the provider defaults.
	switch key {
	case "embedding.provider":
		if err := settingsService.SetEmbeddingProvider(domain.AIProvider(value), ""); err != nil {
			return fmt.Errorf("failed to set embedding provider: %w", err)
		}
		cmd.Printf("embedding.provider = %s\n", value)
		return nil
	case "llm.provider":
		if err := settingsService.SetLLMProvider(domain.AIProvider(value), ""); err != nil {
			return fmt.Errorf("failed to set LLM provider: %w", err)
		}
		cmd.Printf("llm.provider = %s\n", value)
		return nil
	}

	setter, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := setter(settings, value); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	provider, model := promptProvider(cmd, reader, providers, domain.DefaultEmbeddingModels())

	if err := settingsService.SetEmbeddingProvider(provider, model); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	return validateProvider(cmd, provider, model, settingsService.ValidateEmbeddingConfig)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select LLM Provider")
	provider, model := promptProvider(cmd, reader, domain.AllLLMProviders(), domain.DefaultLLMModels())

	if err := settingsService.SetLLMProvider(provider, model); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	return validateProvider(cmd, provider, model, settingsService.ValidateLLMConfig)
}

func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string) {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}
	return provider, model
}

func validateProvider(cmd *cobra.Command, provider domain.AIProvider, model string, validate func() error) error {
	cmd.Print("Validating configuration... ")
	if err := validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		if provider.RequiresAPIKey() {
			printWarning(cmd, "API keys are read from %s_API_KEY or ~/.lexrag/.env.", strings.ToUpper(string(provider)))
		}
		return fmt.Errorf("%s configuration validation failed: %w", provider, err)
	}
	cmd.Println("OK")
	cmd.Printf("Provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
