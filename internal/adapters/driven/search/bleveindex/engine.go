// Package bleveindex implements driven.SearchEngine on a bleve index.
package bleveindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

const (
	fieldContent    = "content"
	fieldDocumentID = "document_id"
	fieldTags       = "tags"

	// deletePageSize bounds how many chunk ids are fetched per delete round.
	deletePageSize = 500
)

// chunkDoc is what gets indexed for each chunk.
type chunkDoc struct {
	Content    string   `json:"content"`
	DocumentID string   `json:"document_id"`
	Tags       []string `json:"tags,omitempty"`
}

// Engine is a bleve-backed keyword index of chunks.
type Engine struct {
	mu      sync.RWMutex
	index   bleve.Index
	created bool
}

// Open opens the index at dir, creating it when missing.
func Open(dir string) (*Engine, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		index, err := bleve.New(dir, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create bleve index: %w", err)
		}
		return &Engine{index: index, created: true}, nil
	}
	index, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}
	return &Engine{index: index}, nil
}

// NewInMemory creates an index that lives only as long as the process.
func NewInMemory() (*Engine, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory bleve index: %w", err)
	}
	return &Engine{index: index, created: true}, nil
}

// Created reports whether the index was empty when the engine was made,
// rather than reopened from disk.
func (e *Engine) Created() bool {
	return e.created
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = fieldContent

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt(fieldContent, contentField)

	docIDField := bleve.NewTextFieldMapping()
	docIDField.Store = true
	docIDField.Index = true
	docIDField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt(fieldDocumentID, docIDField)

	tagsField := bleve.NewTextFieldMapping()
	tagsField.Store = false
	tagsField.Index = true
	tagsField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt(fieldTags, tagsField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Index adds or replaces one chunk.
func (e *Engine) Index(_ context.Context, chunk domain.Chunk) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return domain.ErrSearchUnavailable
	}
	doc := chunkDoc{
		Content:    chunk.Content,
		DocumentID: chunk.DocumentID,
		Tags:       chunk.Tags(),
	}
	if err := e.index.Index(chunk.ID, doc); err != nil {
		return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Search runs a keyword query. Hits carry ids and bleve scores only.
func (e *Engine) Search(ctx context.Context, text string, docIDs []string, limit int) ([]driven.SearchHit, error) {
	q := buildQuery(domain.ParseKeywordQuery(text), docIDs)
	if q == nil {
		return []driven.SearchHit{}, nil
	}
	if limit <= 0 {
		limit = domain.DefaultRetrievalLimit
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{fieldDocumentID}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return nil, domain.ErrSearchUnavailable
	}
	res, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]driven.SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docID, _ := hit.Fields[fieldDocumentID].(string)
		hits = append(hits, driven.SearchHit{
			ChunkID:    hit.ID,
			DocumentID: docID,
			Score:      hit.Score,
		})
	}
	return hits, nil
}

// DeleteDocument removes every chunk of a document from the index.
func (e *Engine) DeleteDocument(ctx context.Context, docID string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return domain.ErrSearchUnavailable
	}

	for {
		req := bleve.NewSearchRequestOptions(documentFilter([]string{docID}), deletePageSize, 0, false)
		res, err := e.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("finding chunks of %s: %w", docID, err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := e.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := e.index.Batch(batch); err != nil {
			return fmt.Errorf("deleting chunks of %s: %w", docID, err)
		}
	}
}

// Close closes the index. Later calls fail with domain.ErrSearchUnavailable.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return nil
	}
	err := e.index.Close()
	e.index = nil
	return err
}

// buildQuery turns a parsed keyword query into a bleve boolean query, or
// nil when there is nothing to match.
func buildQuery(kq domain.KeywordQuery, docIDs []string) query.Query {
	if kq.IsEmpty() {
		return nil
	}

	groups := make([]query.Query, 0, len(kq.Groups))
	for _, g := range kq.Groups {
		groups = append(groups, groupQuery(g))
	}

	bq := bleve.NewBooleanQuery()
	if len(groups) == 1 {
		bq.AddMust(groups[0])
	} else {
		bq.AddMust(bleve.NewDisjunctionQuery(groups...))
	}
	if len(docIDs) > 0 {
		bq.AddMust(documentFilter(docIDs))
	}
	for _, ex := range kq.Excluded {
		bq.AddMustNot(termQuery(ex))
	}
	return bq
}

// groupQuery requires every word and phrase of a group. Plain words are
// combined into one AND match so stop words drop out instead of failing
// the group.
func groupQuery(terms []domain.KeywordTerm) query.Query {
	var words []string
	var parts []query.Query
	for _, t := range terms {
		if t.Phrase() {
			parts = append(parts, termQuery(t))
			continue
		}
		words = append(words, t.Text())
	}
	if len(words) > 0 {
		mq := bleve.NewMatchQuery(strings.Join(words, " "))
		mq.SetField(fieldContent)
		mq.SetOperator(query.MatchQueryOperatorAnd)
		parts = append(parts, mq)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return bleve.NewConjunctionQuery(parts...)
}

func termQuery(t domain.KeywordTerm) query.Query {
	if t.Phrase() {
		pq := bleve.NewMatchPhraseQuery(t.Text())
		pq.SetField(fieldContent)
		return pq
	}
	mq := bleve.NewMatchQuery(t.Text())
	mq.SetField(fieldContent)
	return mq
}

func documentFilter(docIDs []string) query.Query {
	terms := make([]query.Query, 0, len(docIDs))
	for _, id := range docIDs {
		tq := bleve.NewTermQuery(id)
		tq.SetField(fieldDocumentID)
		terms = append(terms, tq)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return bleve.NewDisjunctionQuery(terms...)
}
