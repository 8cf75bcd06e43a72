package mcp

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	query   domain.RetrievalQuery
}

func (m *mockRetrievalService) Search(_ context.Context, query domain.RetrievalQuery) []domain.RetrievalResult {
	m.query = query
	return m.results
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.ChatAnswer
	err    error
	docIDs []string
}

func (m *mockChatService) Ask(
	_ context.Context, _ string, _ []domain.ChatMessage, docIDs []string,
) (*domain.ChatAnswer, error) {
	m.docIDs = docIDs
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentService) Create(_ context.Context, doc domain.Document) (*domain.Document, error) {
	return &doc, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
