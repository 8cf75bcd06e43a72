package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages documents and keeps their chunks, vectors and
// index entries in step.
type DocumentService struct {
	docStore     driven.DocumentStore
	chunkStore   driven.ChunkStore
	vectorIndex  driven.VectorIndex
	searchEngine driven.SearchEngine
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, chunkStore driven.ChunkStore) *DocumentService {
	return &DocumentService{
		docStore:   docStore,
		chunkStore: chunkStore,
	}
}

// SetVectorIndex makes Delete remove vectors too.
func (s *DocumentService) SetVectorIndex(index driven.VectorIndex) {
	s.vectorIndex = index
}

// SetSearchEngine makes Delete remove search index entries too.
func (s *DocumentService) SetSearchEngine(engine driven.SearchEngine) {
	s.searchEngine = engine
}

// Create stores a new document. ID and timestamps are assigned here.
func (s *DocumentService) Create(ctx context.Context, doc domain.Document) (*domain.Document, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if doc.Visibility != "" && !doc.Visibility.IsValid() {
		return nil, fmt.Errorf("%w: visibility %q", domain.ErrInvalidInput, doc.Visibility)
	}

	now := time.Now()
	doc.ID = newID()
	doc.Visibility = doc.Visibility.OrDefault()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	logger.Debug("Created document %s (%q)", doc.ID, doc.Title)
	return &doc, nil
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Chunks returns a document's chunks in position order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.chunkStore.ChunksForDocuments(ctx, []string{documentID})
}

// Delete removes a document with all of its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.DeleteDocument(ctx, documentID); err != nil {
			logger.Warn("vectors of %s not removed: %v", documentID, err)
		}
	}
	if s.searchEngine != nil {
		if err := s.searchEngine.DeleteDocument(ctx, documentID); err != nil {
			logger.Warn("index entries of %s not removed: %v", documentID, err)
		}
	}
	if err := s.chunkStore.DeleteChunksForDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

func newID() string {
	return uuid.New().String()
}
