package driven

import "github.com/custodia-labs/lexrag/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved.
// Unconfigured settings pass.
type AIConfigValidator interface {
	// ValidateEmbedding builds the embedding backend and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds the language model backend and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
