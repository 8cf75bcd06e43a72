package driven

import "context"

// RateLimiter paces calls to an external service.
// *rate.Limiter from golang.org/x/time/rate satisfies it.
type RateLimiter interface {
	// Wait blocks until a call is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// ProgressReporter receives ingestion progress. Optional.
type ProgressReporter interface {
	Start(total int)
	Increment()
	Finish()
}

// QueryExpander rewrites a lexical query to include known synonyms.
// Optional: nil means the query is used as typed.
type QueryExpander interface {
	// Expand returns the query in web-search syntax with synonym
	// alternatives joined by OR.
	Expand(query string) string
}
