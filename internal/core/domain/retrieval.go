package domain

import "strings"

// SentinelScore is the placeholder similarity assigned to lexical and
// substring results. It is not comparable across queries and must only
// be used for display.
const SentinelScore = 0.8

// Query bounds.
const (
	DefaultRetrievalLimit = 5
	MaxRetrievalLimit     = 50
)

// ScoreKind tells consumers where a result's score came from.
type ScoreKind string

// Available score kinds.
const (
	// ScoreKindVector is a true cosine similarity.
	ScoreKindVector ScoreKind = "vector"

	// ScoreKindLexical comes from full-text search and carries SentinelScore.
	ScoreKindLexical ScoreKind = "lexical"

	// ScoreKindSubstring comes from the contains fallback and carries SentinelScore.
	ScoreKindSubstring ScoreKind = "substring"
)

// Comparable returns true when scores of this kind can be compared
// against a threshold or against other queries.
func (k ScoreKind) Comparable() bool {
	return k == ScoreKindVector
}

// String returns the string representation.
func (k ScoreKind) String() string {
	return string(k)
}

// RetrievalQuery is a transient search request.
type RetrievalQuery struct {
	// Text is the user's query.
	Text string

	// DocumentIDs restricts results to these documents when non-empty.
	DocumentIDs []string

	// Threshold is the minimum similarity. Only the vector stage honours it.
	Threshold float64

	// Limit is the maximum number of results.
	Limit int
}

// Normalise returns a copy with limit and threshold clamped and
// blank document ids removed.
func (q RetrievalQuery) Normalise() RetrievalQuery {
	out := q
	out.Text = strings.TrimSpace(q.Text)
	switch {
	case out.Limit <= 0:
		out.Limit = DefaultRetrievalLimit
	case out.Limit > MaxRetrievalLimit:
		out.Limit = MaxRetrievalLimit
	}
	switch {
	case out.Threshold < 0:
		out.Threshold = 0
	case out.Threshold > 1:
		out.Threshold = 1
	}
	if len(q.DocumentIDs) > 0 {
		ids := make([]string, 0, len(q.DocumentIDs))
		seen := make(map[string]bool, len(q.DocumentIDs))
		for _, id := range q.DocumentIDs {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		out.DocumentIDs = ids
	}
	return out
}

// Allows reports whether a document id passes the query's filter.
func (q RetrievalQuery) Allows(documentID string) bool {
	if len(q.DocumentIDs) == 0 {
		return true
	}
	for _, id := range q.DocumentIDs {
		if id == documentID {
			return true
		}
	}
	return false
}

// RetrievalResult is one retrieved chunk.
type RetrievalResult struct {
	ChunkID       string
	DocumentID    string
	DocumentTitle string
	Content       string
	Position      int

	// Score is in [0,1]. Exact for vector results, SentinelScore otherwise.
	Score     float64
	ScoreKind ScoreKind
}

// Source is a user-facing citation for one retrieval result.
type Source struct {
	// Index is the 1-based citation number.
	Index         int
	DocumentID    string
	DocumentTitle string
	Score         float64
	ScoreKind     ScoreKind

	// Snippet is a truncated preview of the chunk content.
	Snippet string
}

// AssembledContext is grounding text plus citations in the same order.
type AssembledContext struct {
	Text    string
	Sources []Source
}

// HasContext returns true if any grounding material was assembled.
func (c AssembledContext) HasContext() bool {
	return len(c.Sources) > 0
}
