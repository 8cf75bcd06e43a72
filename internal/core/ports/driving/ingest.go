package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// IngestService turns document text into stored, embedded chunks.
type IngestService interface {
	// ProcessDocumentText chunks, embeds and stores text for an existing
	// document. Per-chunk failures are counted in the report, not returned.
	ProcessDocumentText(ctx context.Context, docID, text string, tags []string) (*domain.IngestReport, error)

	// IngestFile normalises a file, creates its document and processes it.
	IngestFile(ctx context.Context, path string, opts domain.IngestOptions) (*domain.IngestReport, error)

	// IngestGlob ingests every supported file matching a doublestar pattern.
	// Files that fail are logged and skipped.
	IngestGlob(ctx context.Context, pattern string, opts domain.IngestOptions) ([]domain.IngestReport, error)
}
