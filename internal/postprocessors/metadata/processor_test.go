package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestProcessor_Process(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	p := &Processor{now: func() time.Time { return fixed }}

	doc := &domain.Document{
		ID:       "doc-1",
		Metadata: map[string]any{domain.MetaTags: []string{"lease", "commercial"}},
	}
	chunks := []domain.Chunk{
		{ID: "c1", Content: "Rent is payable monthly in advance"},
		{ID: "c2", Content: "Clause é", Metadata: map[string]any{"custom": 1}},
	}

	out, err := p.Process(context.Background(), doc, chunks)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "2025-03-14T09:30:00Z", out[0].Metadata[domain.MetaProcessedAt])
	assert.Equal(t, 34, out[0].Metadata[domain.MetaChunkLength])
	assert.Equal(t, []string{"lease", "commercial"}, out[0].Tags())

	assert.Equal(t, 8, out[1].Metadata[domain.MetaChunkLength])
	assert.Equal(t, 1, out[1].Metadata["custom"])
}

func TestProcessor_Process_NoTags(t *testing.T) {
	out, err := New().Process(context.Background(), &domain.Document{ID: "d"}, []domain.Chunk{{Content: "x"}})
	require.NoError(t, err)

	_, hasTags := out[0].Metadata[domain.MetaTags]
	assert.False(t, hasTags)
	assert.NotEmpty(t, out[0].Metadata[domain.MetaProcessedAt])
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "metadata", New().Name())
}
