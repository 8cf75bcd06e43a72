package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalise_HeadingTitle(t *testing.T) {
	src := "# Mutual NDA\n\n## 1. Definitions\n\n**Confidential Information** means [any data](http://x).\n\n- item one\n- item two\n"

	res, err := New().Normalise(context.Background(), "nda.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Mutual NDA", res.Title)
	assert.Equal(t, "markdown", res.Format)
	assert.Contains(t, res.Content, "1. Definitions")
	assert.Contains(t, res.Content, "Confidential Information means any data.")
	assert.Contains(t, res.Content, "item one\nitem two")
	assert.NotContains(t, res.Content, "**")
	assert.NotContains(t, res.Content, "http://x")
}

func TestNormalise_FrontMatter(t *testing.T) {
	src := "---\ntitle: Lease Agreement\nparties: [Acme Ltd, Beta LLC]\ndate: 2024-01-31\n---\n# Ignored heading\n\nRent is due monthly.\n"

	res, err := New().Normalise(context.Background(), "lease.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Lease Agreement", res.Title)
	assert.Equal(t, []string{"Acme Ltd", "Beta LLC"}, res.Metadata["parties"])
	assert.Equal(t, "2024-01-31", res.Metadata["date"])
	assert.NotContains(t, res.Content, "title:")
	assert.Contains(t, res.Content, "Rent is due monthly.")
}

func TestNormalise_NoTitle(t *testing.T) {
	res, err := New().Normalise(context.Background(), "notes.md", []byte("plain words only"))
	require.NoError(t, err)
	assert.Empty(t, res.Title)
	assert.Nil(t, res.Metadata)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "code fence keeps body", in: "```go\nx := 1\n```", want: "x := 1"},
		{name: "inline code", in: "use `Section 4`", want: "use Section 4"},
		{name: "image removed", in: "see ![sig](sig.png) here", want: "see  here"},
		{name: "quote", in: "> quoted clause", want: "quoted clause"},
		{name: "rule", in: "above\n\n---\n\nbelow", want: "above\n\nbelow"},
		{name: "emphasis", in: "*shall* and __must__", want: "shall and must"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.in))
		})
	}
}
