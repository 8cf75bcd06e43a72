package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedDims      = "embedding.dimensions"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyChunkMax       = "chunking.max_chunk_size"
	keyChunkMin       = "chunking.min_chunk_length"
	keyRetrievalLimit = "retrieval.limit"
	keyThreshold      = "retrieval.threshold"
	keyBackend        = "retrieval.backend"
	keySynonyms       = "retrieval.synonyms_file"
	keySnippetLength  = "retrieval.snippet_length"
	keyIngestRate     = "ingest.rate_per_second"
	keyIngestBurst    = "ingest.burst"
	keyDataDir        = "storage.data_dir"
	defaultOllamaURL  = "http://localhost:11434"
	envOpenAIKey      = "OPENAI_API_KEY"
	envAnthropicKey   = "ANTHROPIC_API_KEY" //nolint:gosec // env var name
)

// SettingsService manages application settings. API keys come from the
// environment and are never written to the config file.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
		},
		Chunking: domain.ChunkingSettings{
			MaxChunkSize:   s.getInt(keyChunkMax, defaults.Chunking.MaxChunkSize),
			MinChunkLength: s.getInt(keyChunkMin, defaults.Chunking.MinChunkLength),
		},
		Retrieval: domain.RetrievalSettings{
			Limit:         s.getInt(keyRetrievalLimit, defaults.Retrieval.Limit),
			Threshold:     s.getFloat(keyThreshold, defaults.Retrieval.Threshold),
			Backend:       s.getBackend(defaults.Retrieval.Backend),
			SynonymsFile:  s.configStore.GetString(keySynonyms),
			SnippetLength: s.getInt(keySnippetLength, defaults.Retrieval.SnippetLength),
		},
		Ingest: domain.IngestSettings{
			RatePerSecond: s.getFloat(keyIngestRate, defaults.Ingest.RatePerSecond),
			Burst:         s.getInt(keyIngestBurst, defaults.Ingest.Burst),
		},
		DataDir: s.configStore.GetString(keyDataDir),
	}

	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaults.Embedding.BaseURL
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}
	settings.Embedding.APIKey = s.apiKey(settings.Embedding.Provider)
	settings.LLM.APIKey = s.apiKey(settings.LLM.Provider)

	return settings, nil
}

// Save persists application settings. API keys are skipped.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkMax, settings.Chunking.MaxChunkSize},
		{keyChunkMin, settings.Chunking.MinChunkLength},
		{keyRetrievalLimit, settings.Retrieval.Limit},
		{keyThreshold, settings.Retrieval.Threshold},
		{keyBackend, string(settings.Retrieval.Backend)},
		{keySynonyms, settings.Retrieval.SynonymsFile},
		{keySnippetLength, settings.Retrieval.SnippetLength},
		{keyIngestRate, settings.Ingest.RatePerSecond},
		{keyIngestBurst, settings.Ingest.Burst},
		{keyDataDir, settings.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// picks the provider default, and the vector size follows the model.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)

	return s.Save(settings)
}

// Validate checks the current settings for values the pipeline cannot use.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not usable (is %s set?)",
			domain.ErrInvalidInput, settings.Embedding.Provider, envKeyFor(settings.Embedding.Provider))
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not usable (is %s set?)",
			domain.ErrInvalidInput, settings.LLM.Provider, envKeyFor(settings.LLM.Provider))
	}
	if settings.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding.dimensions must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: chunking.max_chunk_size must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunking.MinChunkLength < 0 {
		return fmt.Errorf("%w: chunking.min_chunk_length must not be negative", domain.ErrInvalidInput)
	}
	if settings.Retrieval.Limit < 1 || settings.Retrieval.Limit > domain.MaxRetrievalLimit {
		return fmt.Errorf("%w: retrieval.limit must be between 1 and %d",
			domain.ErrInvalidInput, domain.MaxRetrievalLimit)
	}
	if settings.Retrieval.Threshold < 0 || settings.Retrieval.Threshold > 1 {
		return fmt.Errorf("%w: retrieval.threshold must be between 0 and 1", domain.ErrInvalidInput)
	}
	if !settings.Retrieval.Backend.IsValid() {
		return fmt.Errorf("%w: retrieval.backend %q", domain.ErrInvalidInput, settings.Retrieval.Backend)
	}
	if settings.Ingest.RatePerSecond < 0 {
		return fmt.Errorf("%w: ingest.rate_per_second must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) apiKey(provider domain.AIProvider) string {
	name := envKeyFor(provider)
	if name == "" {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return v
}

func envKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return envOpenAIKey
	case domain.AIProviderAnthropic:
		return envAnthropicKey
	default:
		return ""
	}
}

func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBackend(defaultVal domain.SearchBackend) domain.SearchBackend {
	backend := domain.SearchBackend(s.configStore.GetString(keyBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
