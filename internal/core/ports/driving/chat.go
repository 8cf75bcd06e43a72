package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ChatService answers questions grounded in retrieved documents.
type ChatService interface {
	// Ask retrieves context for question and asks the LLM.
	// history holds earlier user/assistant turns, oldest first.
	Ask(ctx context.Context, question string, history []domain.ChatMessage, docIDs []string) (*domain.ChatAnswer, error)
}
