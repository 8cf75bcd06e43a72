package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// Create stores a new document and returns it with ID and timestamps set.
	Create(ctx context.Context, doc domain.Document) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns a document's chunks in reading order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Delete removes a document, its chunks and its index entries.
	Delete(ctx context.Context, documentID string) error
}
