package driven

import "context"

// Normaliser extracts plain text from one file format.
type Normaliser interface {
	// Extensions returns the lower-case file extensions handled, with dot.
	Extensions() []string

	// Priority breaks ties between normalisers claiming the same extension
	// (higher = preferred). Fallback normalisers return 1-9.
	Priority() int

	// Normalise converts file bytes into a title and plain text.
	// name is the file name or URI, used for title fallback.
	Normalise(ctx context.Context, name string, data []byte) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	Title   string
	Content string

	// Format names the source format, e.g. "markdown".
	Format string

	// Metadata holds format-specific fields such as email headers.
	Metadata map[string]any
}
