package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ChunkStore persists chunks and answers the two lexical strategies.
// Every method taking docIDs treats an empty slice as "no filter".
type ChunkStore interface {
	// InsertChunk stores one chunk. The owning document must exist.
	InsertChunk(ctx context.Context, chunk domain.Chunk) error

	// FullTextSearch runs a ranked keyword search over chunk content.
	// The query uses web-search syntax: terms, "phrases", -exclusions, OR.
	FullTextSearch(ctx context.Context, query string, docIDs []string, limit int) ([]ChunkHit, error)

	// SubstringSearch finds chunks whose content contains needle,
	// case-insensitively, in store order.
	SubstringSearch(ctx context.Context, needle string, docIDs []string, limit int) ([]ChunkHit, error)

	// GetChunks returns the chunks that exist among ids, in no particular order.
	GetChunks(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// ChunksForDocuments returns every chunk of the given documents
	// ordered by document then position.
	ChunksForDocuments(ctx context.Context, docIDs []string) ([]domain.Chunk, error)

	// DeleteChunksForDocument removes all chunks of a document.
	DeleteChunksForDocument(ctx context.Context, docID string) error
}

// ChunkHit is a chunk matched by a store search.
type ChunkHit struct {
	Chunk domain.Chunk

	// Score is the engine's relevance, higher is better. Zero when the
	// engine does not rank.
	Score float64
}
