// Package chunker provides a sentence-bounded text chunking processor.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// DefaultMaxChunkSize is the default upper bound on chunk characters.
const DefaultMaxChunkSize = 1000

// DefaultMinChunkLength is the default lower bound; shorter chunks are noise.
const DefaultMinChunkLength = 50

var _ driven.PostProcessor = (*Processor)(nil)

// Processor splits document content into sentence-bounded chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxChunkSize   int
	minChunkLength int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChunkSize sets the chunk size bound in characters.
func WithMaxChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxChunkSize = size
		}
	}
}

// WithMinChunkLength sets the minimum viable chunk length.
// Zero keeps every chunk.
func WithMinChunkLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minChunkLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChunkSize:   DefaultMaxChunkSize,
		minChunkLength: DefaultMinChunkLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks numbered from zero.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	parts := Split(doc.Content, p.maxChunkSize, p.minChunkLength)
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Position:   i,
			Content:    part,
			Metadata:   make(map[string]any),
		})
	}
	return chunks, nil
}
