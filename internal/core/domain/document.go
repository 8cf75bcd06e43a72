package domain

import (
	"fmt"
	"strings"
	"time"
)

// Visibility controls who may see a document.
type Visibility string

// Available visibilities.
const (
	// VisibilityPersonal documents belong to the uploader only.
	VisibilityPersonal Visibility = "personal"

	// VisibilityShared documents are visible to the whole workspace.
	VisibilityShared Visibility = "shared"
)

// IsValid returns true if the visibility is recognised.
func (v Visibility) IsValid() bool {
	return v == VisibilityPersonal || v == VisibilityShared
}

// OrDefault returns personal for the zero value.
func (v Visibility) OrDefault() Visibility {
	if v == "" {
		return VisibilityPersonal
	}
	return v
}

// String returns the string representation.
func (v Visibility) String() string {
	return string(v.OrDefault())
}

// ParseVisibility converts user input into a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return VisibilityPersonal, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("%w: visibility %q", ErrInvalidInput, s)
	}
	return v, nil
}

// Document represents an ingested document.
// Content may arrive after the document is created and may be empty.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full raw text before chunking.
	Content string

	// Visibility is the ownership flag.
	Visibility Visibility

	// URI is the original location, if the document came from a file.
	URI string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Standard chunk metadata keys.
const (
	MetaProcessedAt       = "processed_at"
	MetaChunkLength       = "chunk_length"
	MetaTags              = "tags"
	MetaEmbeddingDegraded = "embedding_degraded"
)

// Chunk is a bounded-size text segment of exactly one Document.
// Sorting a document's chunks by Position reconstructs reading order.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Position is the zero-based sequence index within the document.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation. All chunks in a store
	// share the same dimensionality.
	Embedding []float32

	// Metadata holds processed_at, chunk_length, tags and friends.
	Metadata map[string]any
}

// Tags returns the caller-supplied tags stored on the chunk.
// Handles both []string and the []any produced by JSON decoding.
func (c Chunk) Tags() []string {
	switch v := c.Metadata[MetaTags].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// IsDegraded reports whether the chunk was embedded with the fallback vector.
func (c Chunk) IsDegraded() bool {
	degraded, _ := c.Metadata[MetaEmbeddingDegraded].(bool)
	return degraded
}
