package driven

import "context"

// VectorIndex provides semantic similarity search operations.
// All vectors in one index have Dimensions() components.
type VectorIndex interface {
	// Add inserts a vector for the given chunk.
	Add(ctx context.Context, chunkID, documentID string, embedding []float32) error

	// Search finds the k most similar vectors, restricted to docIDs when non-empty.
	Search(ctx context.Context, query []float32, k int, docIDs []string) ([]VectorHit, error)

	// DeleteDocument removes every vector of a document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Dimensions returns the fixed vector length.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Similarity is the cosine similarity clamped to 0-1.
	Similarity float64
}
