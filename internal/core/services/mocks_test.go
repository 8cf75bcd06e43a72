package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

var errBackendDown = errors.New("backend down")

// mockEmbedding returns fixed vectors by text, or a default vector.
type mockEmbedding struct {
	mu       sync.Mutex
	dims     int
	vectors  map[string][]float32
	fallback []float32
	err      error
	block    bool
	received []string
}

func newMockEmbedding(dims int) *mockEmbedding {
	fallback := make([]float32, dims)
	if dims > 0 {
		fallback[0] = 1
	}
	return &mockEmbedding{dims: dims, vectors: map[string][]float32{}, fallback: fallback}
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.received = append(m.received, text)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedding) Dimensions() int              { return m.dims }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedding) Close() error                 { return nil }

// mockLLM records the messages it was sent.
type mockLLM struct {
	answer   string
	err      error
	messages []domain.ChatMessage
}

func (m *mockLLM) Chat(_ context.Context, messages []domain.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.messages = messages
	return m.answer, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// flakyChunkStore injects failures into a memory store.
type flakyChunkStore struct {
	*memory.DocumentStore
	ftsErr       error
	substringErr error
	failInsertAt int // 1-based insert call to fail, 0 for never
	inserts      int
}

func (s *flakyChunkStore) FullTextSearch(
	ctx context.Context, query string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	if s.ftsErr != nil {
		return nil, s.ftsErr
	}
	return s.DocumentStore.FullTextSearch(ctx, query, docIDs, limit)
}

func (s *flakyChunkStore) SubstringSearch(
	ctx context.Context, needle string, docIDs []string, limit int,
) ([]driven.ChunkHit, error) {
	if s.substringErr != nil {
		return nil, s.substringErr
	}
	return s.DocumentStore.SubstringSearch(ctx, needle, docIDs, limit)
}

func (s *flakyChunkStore) InsertChunk(ctx context.Context, chunk domain.Chunk) error {
	s.inserts++
	if s.inserts == s.failInsertAt {
		return errors.New("disk full")
	}
	return s.DocumentStore.InsertChunk(ctx, chunk)
}

// mockSearchEngine returns canned hits and ignores the document filter.
type mockSearchEngine struct {
	hits    []driven.SearchHit
	err     error
	indexed []string
	deleted []string
}

func (e *mockSearchEngine) Index(_ context.Context, chunk domain.Chunk) error {
	e.indexed = append(e.indexed, chunk.ID)
	return nil
}

func (e *mockSearchEngine) Search(_ context.Context, _ string, _ []string, _ int) ([]driven.SearchHit, error) {
	return e.hits, e.err
}

func (e *mockSearchEngine) DeleteDocument(_ context.Context, docID string) error {
	e.deleted = append(e.deleted, docID)
	return nil
}

func (e *mockSearchEngine) Close() error { return nil }

// mockExpander appends synonyms for known words.
type mockExpander map[string]string

func (m mockExpander) Expand(query string) string {
	if extra, ok := m[query]; ok {
		return query + " OR " + extra
	}
	return query
}

// mockPrompts serves fixed templates.
type mockPrompts map[string]string

func (m mockPrompts) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m mockPrompts) Reload() {}

// countingLimiter counts Wait calls and optionally fails.
type countingLimiter struct {
	calls int
	err   error
}

func (l *countingLimiter) Wait(_ context.Context) error {
	l.calls++
	return l.err
}

// mockProgress records reporter calls.
type mockProgress struct {
	total      int
	increments int
	finished   int
}

func (p *mockProgress) Start(total int) { p.total = total }
func (p *mockProgress) Increment()      { p.increments++ }
func (p *mockProgress) Finish()         { p.finished++ }

// textNormalisers accepts .txt files and uses the file name as title.
type textNormalisers struct{}

func (textNormalisers) Normalise(_ context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	if !strings.HasSuffix(name, ".txt") {
		return nil, domain.ErrUnsupportedFormat
	}
	return &driven.NormaliseResult{
		Title:   strings.TrimSuffix(filepath.Base(name), ".txt"),
		Content: string(data),
		Format:  "text/plain",
	}, nil
}

func (textNormalisers) Register(_ driven.Normaliser) {}

func (textNormalisers) Supports(name string) bool { return strings.HasSuffix(name, ".txt") }
