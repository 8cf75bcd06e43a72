package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results and passes the query through", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.RetrievalResult{{
				ChunkID:       "c-1",
				DocumentID:    "doc-1",
				DocumentTitle: "Master Services Agreement",
				Content:       "Liability is capped at fees paid.",
				Position:      3,
				Score:         domain.SentinelScore,
				ScoreKind:     domain.ScoreKindLexical,
			}},
		}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		input := SearchInput{Query: "liability cap", DocumentIDs: []string{"doc-1"}, Threshold: 0.5, Limit: 3}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		got := output.Results[0]
		assert.Equal(t, "c-1", got.ChunkID)
		assert.Equal(t, "Master Services Agreement", got.Title)
		assert.Equal(t, 3, got.Position)
		assert.Equal(t, domain.SentinelScore, got.Score)
		assert.Equal(t, "lexical", got.ScoreKind)

		assert.Equal(t, domain.RetrievalQuery{
			Text: "liability cap", DocumentIDs: []string{"doc-1"}, Threshold: 0.5, Limit: 3,
		}, retrieval.query)
	})

	t.Run("empty results", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "nothing"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Results)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		chat := &mockChatService{answer: &domain.ChatAnswer{
			Answer:   "Thirty days [1].",
			Grounded: true,
			Sources: []domain.Source{{
				Index: 1, DocumentID: "doc-1", DocumentTitle: "MSA",
				Score: 0.91, ScoreKind: domain.ScoreKindVector, Snippet: "within thirty days",
			}},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Chat: chat})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "notice period?", DocumentIDs: []string{"doc-1"}})

		require.NoError(t, err)
		assert.Equal(t, "Thirty days [1].", output.Answer)
		assert.True(t, output.Grounded)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, 1, output.Sources[0].Index)
		assert.Equal(t, "vector", output.Sources[0].ScoreKind)
		assert.Equal(t, []string{"doc-1"}, chat.docIDs)
	})

	t.Run("no chat service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.ErrorIs(t, err, errNotAvailable)
	})

	t.Run("LLM unavailable is explained", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrLLMUnavailable}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Chat: chat})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "search_documents")
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "doc-1", Title: "NDA", Visibility: domain.VisibilityShared, URI: "/docs/nda.md"},
			{ID: "doc-2", Title: "Lease", Visibility: domain.VisibilityPersonal},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, DocumentSummary{ID: "doc-1", Title: "NDA", Visibility: "shared", URI: "/docs/nda.md"},
			output.Documents[0])
	})

	t.Run("service error", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("database error")}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestServer_handleGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document with chunks", func(t *testing.T) {
		docs := &mockDocumentService{
			document: &domain.Document{ID: "doc-1", Title: "NDA", Content: "Full text.", Visibility: domain.VisibilityPersonal},
			chunks: []domain.Chunk{
				{ID: "c-0", Position: 0, Content: "Full", Metadata: map[string]any{domain.MetaTags: []string{"nda"}}},
				{ID: "c-1", Position: 1, Content: "text.", Metadata: map[string]any{domain.MetaEmbeddingDegraded: true}},
			},
		}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		_, output, err := server.handleGetDocument(ctx, nil, GetDocumentInput{ID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, "NDA", output.Document.Title)
		assert.Equal(t, "Full text.", output.Content)
		require.Len(t, output.Chunks, 2)
		assert.Equal(t, []string{"nda"}, output.Chunks[0].Tags)
		assert.False(t, output.Chunks[0].Degraded)
		assert.True(t, output.Chunks[1].Degraded)
	})

	t.Run("not found", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		_, _, err := server.handleGetDocument(ctx, nil, GetDocumentInput{ID: "missing"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "no such document")
	})
}
