package driven

import "context"

// EmbeddingService turns text into a vector. The pipeline wraps it in a
// ResilientEmbedder, so a nil or failing backend degrades to the fallback
// vector instead of stopping ingestion.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the vector length the model produces.
	Dimensions() int

	ModelName() string

	// Ping makes the cheapest request that proves the model is loaded
	// and credentials work.
	Ping(ctx context.Context) error

	Close() error
}
