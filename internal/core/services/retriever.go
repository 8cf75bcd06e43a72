package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// DefaultSearchTimeout bounds each backend call made by the Retriever.
const DefaultSearchTimeout = 10 * time.Second

// untitled is shown when a result's document title cannot be loaded.
const untitled = "Untitled document"

// scoredChunk holds intermediate search results before hydration.
type scoredChunk struct {
	chunkID    string
	documentID string

	// content is empty when the backend returns ids only.
	content  string
	position int
	score    float64
	kind     domain.ScoreKind
}

// Retriever finds relevant chunks with a vector stage followed by a
// lexical then substring cascade.
//
// The threshold is honoured by the vector stage only. Lexical and substring
// results carry domain.SentinelScore, which is for display and not for
// quality cut-offs.
type Retriever struct {
	docStore   driven.DocumentStore
	chunkStore driven.ChunkStore

	searchEngine driven.SearchEngine
	vectorIndex  driven.VectorIndex
	embedder     *ResilientEmbedder
	expander     driven.QueryExpander

	timeout time.Duration
}

// NewRetriever creates a retriever over the chunk store. Optional
// backends are attached with the Set methods.
func NewRetriever(docStore driven.DocumentStore, chunkStore driven.ChunkStore) *Retriever {
	return &Retriever{
		docStore:   docStore,
		chunkStore: chunkStore,
		timeout:    DefaultSearchTimeout,
	}
}

// SetSearchEngine makes engine the primary lexical backend instead of
// the chunk store's own full-text search.
func (r *Retriever) SetSearchEngine(engine driven.SearchEngine) {
	r.searchEngine = engine
}

// SetVectorIndex enables the vector stage.
func (r *Retriever) SetVectorIndex(index driven.VectorIndex, embedder *ResilientEmbedder) {
	r.vectorIndex = index
	r.embedder = embedder
}

// SetQueryExpander enables synonym expansion of lexical queries.
func (r *Retriever) SetQueryExpander(expander driven.QueryExpander) {
	r.expander = expander
}

// SetTimeout sets the per-call timeout. Non-positive values are ignored.
func (r *Retriever) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Search returns up to query.Limit results, highest relevance first.
// It never fails: if every strategy errors the result is empty.
func (r *Retriever) Search(ctx context.Context, query domain.RetrievalQuery) []domain.RetrievalResult {
	logger.Section("Retrieval")
	defer logger.Timed("retrieval")()

	q := query.Normalise()
	logger.Debug("Query: %q, docs=%v, threshold=%.2f, limit=%d", q.Text, q.DocumentIDs, q.Threshold, q.Limit)

	if q.Text == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}
	}

	if hits, ok := r.vectorStage(ctx, q); ok {
		return r.hydrate(ctx, hits, q)
	}

	hits, used, errs := cascade(
		strategy[[]scoredChunk]{name: "lexical", run: func() ([]scoredChunk, error) { return r.lexicalSearch(ctx, q) }},
		strategy[[]scoredChunk]{name: "substring", run: func() ([]scoredChunk, error) { return r.substringSearch(ctx, q) }},
	)
	if used == "" {
		logger.Warn("retrieval: all strategies failed: %v", errors.Join(errs...))
		return []domain.RetrievalResult{}
	}
	if len(errs) > 0 {
		logger.Warn("retrieval: lexical search failed, used %s fallback: %v", used, errs[0])
	}
	logger.Info("Strategy %s: %d hits", used, len(hits))

	return r.hydrate(ctx, hits, q)
}

// vectorStage ranks by cosine similarity. It reports false when the stage
// is unavailable or found nothing above the threshold, letting the
// lexical cascade run.
func (r *Retriever) vectorStage(ctx context.Context, q domain.RetrievalQuery) ([]scoredChunk, bool) {
	if r.vectorIndex == nil || r.embedder == nil || !r.embedder.Available() {
		logger.Debug("Vector stage skipped: not configured")
		return nil, false
	}
	if r.vectorIndex.Dimensions() != r.embedder.Dimensions() {
		logger.Warn("vector stage skipped: index has %d dims, embedder %d",
			r.vectorIndex.Dimensions(), r.embedder.Dimensions())
		return nil, false
	}

	vec, err := r.embedder.EmbedStrict(ctx, q.Text)
	if err != nil {
		logger.Warn("vector stage skipped: query embedding failed: %v", err)
		return nil, false
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.vectorIndex.Search(callCtx, vec, q.Limit, q.DocumentIDs)
	if err != nil {
		logger.Warn("vector stage failed: %v", err)
		return nil, false
	}

	out := make([]scoredChunk, 0, len(hits))
	for _, h := range hits {
		if h.Similarity < q.Threshold {
			continue
		}
		out = append(out, scoredChunk{
			chunkID:    h.ChunkID,
			documentID: h.DocumentID,
			score:      h.Similarity,
			kind:       domain.ScoreKindVector,
		})
	}
	logger.Debug("Vector stage: %d hits, %d above threshold", len(hits), len(out))

	return out, len(out) > 0
}

// lexicalSearch is the primary strategy. Results take the sentinel score.
func (r *Retriever) lexicalSearch(ctx context.Context, q domain.RetrievalQuery) ([]scoredChunk, error) {
	text := q.Text
	if r.expander != nil {
		text = r.expander.Expand(text)
		logger.Debug("Expanded query: %q", text)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.searchEngine != nil {
		hits, err := r.searchEngine.Search(callCtx, text, q.DocumentIDs, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		out := make([]scoredChunk, 0, len(hits))
		for _, h := range hits {
			out = append(out, scoredChunk{
				chunkID:    h.ChunkID,
				documentID: h.DocumentID,
				score:      domain.SentinelScore,
				kind:       domain.ScoreKindLexical,
			})
		}
		return out, nil
	}

	if r.chunkStore == nil {
		return nil, domain.ErrSearchUnavailable
	}
	hits, err := r.chunkStore.FullTextSearch(callCtx, text, q.DocumentIDs, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return fromChunkHits(hits, domain.ScoreKindLexical), nil
}

// substringSearch is the fallback strategy. It always uses the text as typed.
func (r *Retriever) substringSearch(ctx context.Context, q domain.RetrievalQuery) ([]scoredChunk, error) {
	if r.chunkStore == nil {
		return nil, domain.ErrSearchUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.chunkStore.SubstringSearch(callCtx, q.Text, q.DocumentIDs, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	return fromChunkHits(hits, domain.ScoreKindSubstring), nil
}

func fromChunkHits(hits []driven.ChunkHit, kind domain.ScoreKind) []scoredChunk {
	out := make([]scoredChunk, 0, len(hits))
	for _, h := range hits {
		out = append(out, scoredChunk{
			chunkID:    h.Chunk.ID,
			documentID: h.Chunk.DocumentID,
			content:    h.Chunk.Content,
			position:   h.Chunk.Position,
			score:      domain.SentinelScore,
			kind:       kind,
		})
	}
	return out
}

// hydrate fills in content and titles, enforces the document filter and
// the limit, and keeps engine order. Lookup failures drop detail, never
// results.
func (r *Retriever) hydrate(ctx context.Context, hits []scoredChunk, q domain.RetrievalQuery) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, 0, len(hits))
	if len(hits) == 0 {
		return results
	}

	hits = r.fillContent(ctx, hits)
	titles := r.loadTitles(ctx, hits)

	for _, h := range hits {
		if len(results) >= q.Limit {
			break
		}
		if !q.Allows(h.documentID) {
			logger.Debug("Dropping %s: document %s outside filter", h.chunkID, h.documentID)
			continue
		}
		if h.content == "" {
			continue
		}
		title, ok := titles[h.documentID]
		if titles != nil && !ok {
			// Document no longer exists.
			continue
		}
		if title == "" {
			title = untitled
		}
		results = append(results, domain.RetrievalResult{
			ChunkID:       h.chunkID,
			DocumentID:    h.documentID,
			DocumentTitle: title,
			Content:       h.content,
			Position:      h.position,
			Score:         h.score,
			ScoreKind:     h.kind,
		})
	}

	logger.Info("Final results: %d", len(results))
	return results
}

// fillContent loads chunk bodies for hits that came back as ids only.
func (r *Retriever) fillContent(ctx context.Context, hits []scoredChunk) []scoredChunk {
	var missing []string
	for _, h := range hits {
		if h.content == "" {
			missing = append(missing, h.chunkID)
		}
	}
	if len(missing) == 0 || r.chunkStore == nil {
		return hits
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	chunks, err := r.chunkStore.GetChunks(callCtx, missing)
	if err != nil {
		logger.Warn("retrieval: loading chunk content failed: %v", err)
		return hits
	}
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	for i := range hits {
		if c, ok := byID[hits[i].chunkID]; ok && hits[i].content == "" {
			hits[i].content = c.Content
			hits[i].position = c.Position
			hits[i].documentID = c.DocumentID
		}
	}
	return hits
}

// loadTitles returns document titles keyed by id, or nil if the lookup
// itself failed (in which case no result is dropped for a missing title).
func (r *Retriever) loadTitles(ctx context.Context, hits []scoredChunk) map[string]string {
	if r.docStore == nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, h := range hits {
		if !seen[h.documentID] {
			seen[h.documentID] = true
			ids = append(ids, h.documentID)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	docs, err := r.docStore.GetDocuments(callCtx, ids)
	if err != nil {
		logger.Warn("retrieval: loading document titles failed: %v", err)
		return nil
	}
	titles := make(map[string]string, len(docs))
	for _, d := range docs {
		titles[d.ID] = d.Title
	}
	return titles
}
