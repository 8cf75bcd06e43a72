package driving

import "github.com/custodia-labs/lexrag/internal/core/domain"

// SettingsService reads and writes config.toml through typed settings.
// API keys never pass through it; they come from the environment.
type SettingsService interface {
	// Get returns stored settings with defaults filled in.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// SetEmbeddingProvider and SetLLMProvider switch provider and model,
	// resetting provider-specific fields such as base URL.
	SetEmbeddingProvider(provider domain.AIProvider, model string) error
	SetLLMProvider(provider domain.AIProvider, model string) error

	// Validate checks ranges and enums without touching the network.
	Validate() error

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
