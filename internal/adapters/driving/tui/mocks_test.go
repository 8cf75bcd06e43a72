package tui

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

type mockChatService struct {
	answer *domain.ChatAnswer
	err    error
}

func (m *mockChatService) Ask(
	_ context.Context, _ string, _ []domain.ChatMessage, _ []string,
) (*domain.ChatAnswer, error) {
	return m.answer, m.err
}

type mockRetrievalService struct {
	results []domain.RetrievalResult
}

func (m *mockRetrievalService) Search(_ context.Context, _ domain.RetrievalQuery) []domain.RetrievalResult {
	return m.results
}

type mockDocumentService struct {
	docs   []domain.Document
	chunks []domain.Chunk
}

func (m *mockDocumentService) Create(_ context.Context, doc domain.Document) (*domain.Document, error) {
	return &doc, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return nil
}
