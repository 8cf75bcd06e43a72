package domain

import "time"

// IngestOptions carries caller choices for a new document.
type IngestOptions struct {
	// Title overrides the title derived from the file.
	Title string

	// Visibility of the created document.
	Visibility Visibility

	// Tags are copied onto every chunk.
	Tags []string
}

// IngestReport summarises one processDocumentText run.
// Failed chunks leave gaps in Position coverage; that is an accepted state.
type IngestReport struct {
	DocumentID string
	Title      string

	// Chunks is how many chunks the pipeline produced.
	Chunks int

	// Stored is how many were persisted.
	Stored int

	// Failed is how many could not be persisted.
	Failed int

	// Degraded is how many were stored with a fallback embedding.
	Degraded int

	Duration time.Duration
}

// Complete returns true if every produced chunk was stored.
func (r IngestReport) Complete() bool {
	return r.Failed == 0 && r.Stored == r.Chunks
}
