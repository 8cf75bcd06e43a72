package driving

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Search returns results highest relevance first. It never fails:
	// when every strategy errors the result is empty.
	Search(ctx context.Context, query domain.RetrievalQuery) []domain.RetrievalResult
}

// ContextAssembler turns retrieval results into grounding text and citations.
type ContextAssembler interface {
	// Assemble renders results in order. Zero results give an empty
	// context and an empty source list.
	Assemble(results []domain.RetrievalResult) domain.AssembledContext
}
