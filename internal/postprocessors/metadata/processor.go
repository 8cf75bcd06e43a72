// Package metadata stamps standard metadata onto chunks.
package metadata

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

var _ driven.PostProcessor = (*Processor)(nil)

// Processor records processed_at, chunk_length and the document's
// tags on every chunk it receives.
type Processor struct {
	now func() time.Time
}

// New creates a metadata processor using the wall clock.
func New() *Processor {
	return &Processor{now: time.Now}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "metadata"
}

// Process stamps each chunk in place. Existing keys other than the
// standard ones are preserved.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	stamp := p.now().UTC().Format(time.RFC3339)
	tags := documentTags(doc)

	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[domain.MetaProcessedAt] = stamp
		chunks[i].Metadata[domain.MetaChunkLength] = utf8.RuneCountInString(chunks[i].Content)
		if len(tags) > 0 {
			chunks[i].Metadata[domain.MetaTags] = append([]string(nil), tags...)
		}
	}
	return chunks, nil
}

func documentTags(doc *domain.Document) []string {
	if doc == nil {
		return nil
	}
	return domain.Chunk{Metadata: doc.Metadata}.Tags()
}
