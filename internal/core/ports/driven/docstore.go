package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// DocumentStore persists documents.
// Deleting a document must also delete every chunk it owns.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocuments retrieves the documents that exist among ids.
	// Missing ids are skipped, not reported.
	GetDocuments(ctx context.Context, ids []string) ([]domain.Document, error)

	// GetDocumentByURI finds the document ingested from uri.
	// Returns domain.ErrNotFound when none exists.
	GetDocumentByURI(ctx context.Context, uri string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
