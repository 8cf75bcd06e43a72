package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Built-in prompts used when no PromptStore is set or a template is missing.
const (
	defaultGroundedPrompt = "You answer questions about legal documents. " +
		"Use only the context below. Cite documents as [n] in the order they appear. " +
		"If the context does not answer the question, say so.\n\nContext:\n%s"
	defaultNoContextPrompt = "You answer questions about legal documents. " +
		"No documents matched this question, so you have no context to rely on. " +
		"Tell the user that and do not invent citations."
)

// contextPlaceholder marks where the grounded prompt receives the context.
const contextPlaceholder = "%s"

// fillContext substitutes the first placeholder in tmpl with text. Any
// other % in the template is literal.
func fillContext(tmpl, text string) string {
	return strings.Replace(tmpl, contextPlaceholder, text, 1)
}

// ChatService answers questions grounded in retrieved chunks.
type ChatService struct {
	retriever driving.RetrievalService
	assembler driving.ContextAssembler
	llm       driven.LLMService
	prompts   driven.PromptStore

	limit     int
	threshold float64
	opts      driven.ChatOptions
}

// NewChatService creates a chat service. llm may be nil, in which case Ask
// fails with domain.ErrLLMUnavailable.
func NewChatService(
	retriever driving.RetrievalService,
	assembler driving.ContextAssembler,
	llm driven.LLMService,
) *ChatService {
	return &ChatService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
		limit:     domain.DefaultRetrievalLimit,
		opts:      driven.ChatOptions{MaxTokens: 1024, Temperature: 0.1},
	}
}

// SetPromptStore overrides the built-in prompts.
func (s *ChatService) SetPromptStore(prompts driven.PromptStore) {
	s.prompts = prompts
}

// SetRetrievalDefaults sets the limit and threshold used for each question.
func (s *ChatService) SetRetrievalDefaults(limit int, threshold float64) {
	s.limit = limit
	s.threshold = threshold
}

// Ask retrieves context for question and asks the LLM to answer it.
func (s *ChatService) Ask(
	ctx context.Context, question string, history []domain.ChatMessage, docIDs []string,
) (*domain.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Chat")
	results := s.retriever.Search(ctx, domain.RetrievalQuery{
		Text:        question,
		DocumentIDs: docIDs,
		Threshold:   s.threshold,
		Limit:       s.limit,
	})
	assembled := s.assembler.Assemble(results)

	var system string
	if assembled.HasContext() {
		system = fillContext(s.prompt(driven.PromptGrounded, defaultGroundedPrompt), assembled.Text)
	} else {
		logger.Debug("No context found, using no-context prompt")
		system = s.prompt(driven.PromptNoContext, defaultNoContextPrompt)
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.ChatRoleSystem, Content: system})
	for _, m := range history {
		if m.Role == domain.ChatRoleSystem {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.ChatRoleUser, Content: question})

	answer, err := s.llm.Chat(ctx, messages, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	logger.Debug("Answer from %s: %d chars, %d sources", s.llm.ModelName(), len(answer), len(assembled.Sources))

	return &domain.ChatAnswer{
		Answer:   strings.TrimSpace(answer),
		Sources:  assembled.Sources,
		Grounded: assembled.HasContext(),
	}, nil
}

func (s *ChatService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Debug("Prompt %q unavailable, using built-in: %v", name, err)
		return fallback
	}
	return p
}
