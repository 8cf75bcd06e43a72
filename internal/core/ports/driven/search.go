package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// SearchEngine is a dedicated keyword index over chunk content.
// Backed by bleve; optional, the ChunkStore covers the same role.
type SearchEngine interface {
	// Index adds or updates a chunk in the search index.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Search performs a keyword search restricted to docIDs when non-empty.
	Search(ctx context.Context, query string, docIDs []string, limit int) ([]SearchHit, error)

	// DeleteDocument removes every chunk of a document from the index.
	DeleteDocument(ctx context.Context, docID string) error

	// Close releases resources.
	Close() error
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Score is the engine's relevance score.
	Score float64
}
