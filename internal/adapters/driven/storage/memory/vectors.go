package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type vectorEntry struct {
	documentID string
	vector     []float32
}

// VectorIndex is a brute-force in-memory cosine index.
type VectorIndex struct {
	mu      sync.RWMutex
	dims    int
	entries map[string]vectorEntry
}

// NewVectorIndex creates an index accepting vectors of exactly dims components.
func NewVectorIndex(dims int) *VectorIndex {
	return &VectorIndex{
		dims:    dims,
		entries: make(map[string]vectorEntry),
	}
}

// Add stores or replaces the vector for a chunk.
func (v *VectorIndex) Add(_ context.Context, chunkID, documentID string, embedding []float32) error {
	if len(embedding) != v.dims {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), v.dims)
	}
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[chunkID] = vectorEntry{documentID: documentID, vector: vec}
	return nil
}

// Search returns the k most similar chunks, highest first.
func (v *VectorIndex) Search(
	ctx context.Context, query []float32, k int, docIDs []string,
) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != v.dims {
		return nil, fmt.Errorf("%w: query has %d, want %d", domain.ErrDimensionMismatch, len(query), v.dims)
	}

	v.mu.RLock()
	allowed := idSet(docIDs)
	hits := make([]driven.VectorHit, 0, len(v.entries))
	for id, e := range v.entries {
		if !allows(allowed, e.documentID) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			DocumentID: e.documentID,
			Similarity: domain.CosineSimilarity(query, e.vector),
		})
	}
	v.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity == hits[j].Similarity {
			return hits[i].ChunkID < hits[j].ChunkID
		}
		return hits[i].Similarity > hits[j].Similarity
	})
	return truncate(hits, k), nil
}

// DeleteDocument removes every vector of a document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, e := range v.entries {
		if e.documentID == documentID {
			delete(v.entries, id)
		}
	}
	return nil
}

// Dimensions returns the accepted vector length.
func (v *VectorIndex) Dimensions() int {
	return v.dims
}
