package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure DocumentStore implements both store interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ChunkStore    = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory document and chunk store. Deleting a
// document deletes its chunks.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	// order is chunk insertion order, used as store order.
	order []string
	dims  int
}

// StoreOption configures a DocumentStore.
type StoreOption func(*DocumentStore)

// WithDimensions makes InsertChunk reject embeddings that do not have
// dims components.
func WithDimensions(dims int) StoreOption {
	return func(s *DocumentStore) {
		s.dims = dims
	}
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore(opts ...StoreOption) *DocumentStore {
	s := &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocuments returns the documents that exist among ids.
func (s *DocumentStore) GetDocuments(_ context.Context, ids []string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.documents[id]; ok {
			result = append(result, doc)
		}
	}
	return result, nil
}

// GetDocumentByURI finds a document by its source URI.
func (s *DocumentStore) GetDocumentByURI(_ context.Context, uri string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.URI == uri {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all documents, oldest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	s.deleteChunksLocked(id)
	return nil
}

// InsertChunk stores one chunk. The document must exist and the chunk id
// must be new.
func (s *DocumentStore) InsertChunk(_ context.Context, chunk domain.Chunk) error {
	if s.dims > 0 && len(chunk.Embedding) > 0 && len(chunk.Embedding) != s.dims {
		return fmt.Errorf("chunk %s: %w: got %d, want %d",
			chunk.ID, domain.ErrDimensionMismatch, len(chunk.Embedding), s.dims)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[chunk.DocumentID]; !ok {
		return fmt.Errorf("document %s: %w", chunk.DocumentID, domain.ErrNotFound)
	}
	if _, ok := s.chunks[chunk.ID]; ok {
		return fmt.Errorf("%w: duplicate chunk id %s", domain.ErrInvalidInput, chunk.ID)
	}
	s.chunks[chunk.ID] = chunk
	s.order = append(s.order, chunk.ID)
	return nil
}

// FullTextSearch scores chunks by how often the query terms occur.
// Terms within a group must all match; any group may match.
func (s *DocumentStore) FullTextSearch(
	ctx context.Context, query string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := domain.ParseKeywordQuery(query)
	if q.IsEmpty() {
		return []driven.ChunkHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := idSet(docIDs)
	hits := make([]driven.ChunkHit, 0)
	for _, id := range s.order {
		c := s.chunks[id]
		if !allows(allowed, c.DocumentID) {
			continue
		}
		if score := keywordScore(q, domain.Tokenize(c.Content)); score > 0 {
			hits = append(hits, driven.ChunkHit{Chunk: c, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, limit), nil
}

// SubstringSearch returns chunks containing needle, ignoring case.
func (s *DocumentStore) SubstringSearch(
	ctx context.Context, needle string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return []driven.ChunkHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := idSet(docIDs)
	hits := make([]driven.ChunkHit, 0)
	for _, id := range s.order {
		c := s.chunks[id]
		if allows(allowed, c.DocumentID) && strings.Contains(strings.ToLower(c.Content), needle) {
			hits = append(hits, driven.ChunkHit{Chunk: c})
		}
	}
	return truncate(hits, limit), nil
}

// GetChunks returns the chunks that exist among ids.
func (s *DocumentStore) GetChunks(_ context.Context, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// ChunksForDocuments returns chunks ordered by document then position.
func (s *DocumentStore) ChunksForDocuments(_ context.Context, docIDs []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := idSet(docIDs)
	result := make([]domain.Chunk, 0)
	for _, id := range s.order {
		if c := s.chunks[id]; allows(allowed, c.DocumentID) {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DocumentID != result[j].DocumentID {
			return result[i].DocumentID < result[j].DocumentID
		}
		return result[i].Position < result[j].Position
	})
	return result, nil
}

// DeleteChunksForDocument removes all chunks of a document.
func (s *DocumentStore) DeleteChunksForDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChunksLocked(docID)
	return nil
}

func (s *DocumentStore) deleteChunksLocked(docID string) {
	kept := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == docID {
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// keywordScore returns the best group's occurrence count, or 0 when no
// group matches or an excluded term is present.
func keywordScore(q domain.KeywordQuery, tokens []string) float64 {
	for _, ex := range q.Excluded {
		if countTerm(ex, tokens) > 0 {
			return 0
		}
	}
	best := 0
	for _, group := range q.Groups {
		total := 0
		for _, term := range group {
			n := countTerm(term, tokens)
			if n == 0 {
				total = 0
				break
			}
			total += n
		}
		if total > best {
			best = total
		}
	}
	return float64(best)
}

func countTerm(term domain.KeywordTerm, tokens []string) int {
	n := 0
	for i := 0; i+len(term.Words) <= len(tokens); i++ {
		match := true
		for j, w := range term.Words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

func idSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func allows(set map[string]bool, id string) bool {
	return set == nil || set[id]
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
