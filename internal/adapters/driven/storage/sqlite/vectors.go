package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the chunk_vectors table.
// Search is a linear scan; corpora here are thousands of chunks, not millions.
type vectorIndex struct {
	store *Store
	dims  int
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Add stores or replaces the vector for a chunk. The chunk must exist.
func (v *vectorIndex) Add(ctx context.Context, chunkID, documentID string, embedding []float32) error {
	if len(embedding) != v.dims {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), v.dims)
	}
	_, err := v.store.db.ExecContext(ctx, `
		INSERT INTO chunk_vectors (chunk_id, document_id, dimensions, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			dimensions = excluded.dimensions,
			embedding = excluded.embedding
	`, chunkID, documentID, v.dims, float32SliceToBytes(embedding))
	if err != nil {
		return fmt.Errorf("saving vector: %w", err)
	}
	return nil
}

// Search returns the k most similar chunks among vectors of the index's
// dimension, highest first.
func (v *vectorIndex) Search(
	ctx context.Context, query []float32, k int, docIDs []string,
) ([]driven.VectorHit, error) {
	if len(query) != v.dims {
		return nil, fmt.Errorf("%w: query has %d, want %d", domain.ErrDimensionMismatch, len(query), v.dims)
	}

	var b strings.Builder
	b.WriteString("SELECT chunk_id, document_id, embedding FROM chunk_vectors WHERE dimensions = ?")
	args := []any{v.dims}
	if len(docIDs) > 0 {
		placeholders, ids := inClause(docIDs)
		b.WriteString(" AND document_id IN (" + placeholders + ")")
		args = append(args, ids...)
	}

	rows, err := v.store.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0)
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		hit.Similarity = domain.CosineSimilarity(query, bytesToFloat32Slice(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity == hits[j].Similarity {
			return hits[i].ChunkID < hits[j].ChunkID
		}
		return hits[i].Similarity > hits[j].Similarity
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteDocument removes every vector of a document.
func (v *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := v.store.db.ExecContext(ctx,
		"DELETE FROM chunk_vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// Dimensions returns the accepted vector length.
func (v *vectorIndex) Dimensions() int {
	return v.dims
}
