package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// LLMService is the response generator. lexrag treats it as an opaque
// chat endpoint: messages in, text out.
//
// Implementations:
//   - Ollama (local models)
//   - OpenAI
//   - Anthropic
type LLMService interface {
	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
