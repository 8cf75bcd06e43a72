package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSynonymsFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		exp, err := LoadSynonymsFile(filepath.Join(t.TempDir(), "synonyms.yaml"))
		require.NoError(t, err)
		assert.Nil(t, exp)
	})

	t.Run("empty path", func(t *testing.T) {
		exp, err := LoadSynonymsFile(" ")
		require.NoError(t, err)
		assert.Nil(t, exp)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "synonyms.yaml")
		require.NoError(t, os.WriteFile(path, []byte("synonyms: [unclosed"), 0o600))
		_, err := LoadSynonymsFile(path)
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "synonyms.yaml")
		content := "version: 1\nsynonyms:\n  liability:\n    - indemnity\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		exp, err := LoadSynonymsFile(path)
		require.NoError(t, err)
		require.NotNil(t, exp)
		assert.Equal(t, "liability OR indemnity", exp.Expand("liability"))
	})
}

func TestSynonymExpander_Expand(t *testing.T) {
	exp := NewSynonymExpander(map[string][]string{
		"liability":     {"indemnity", "Indemnity"},
		"force majeure": {"act of god"},
		"termination":   {},
	})
	require.NotNil(t, exp)

	tests := []struct {
		query string
		want  string
	}{
		{query: "liability", want: "liability OR indemnity"},
		{query: "indemnity", want: "indemnity OR liability"},
		{query: "liability cap", want: "liability cap OR indemnity cap"},
		{query: `"force majeure" notice`, want: `"force majeure" notice OR "act of god" notice`},
		{query: "liability -unlimited", want: "liability OR indemnity -unlimited"},
		{query: "termination", want: "termination"},
		{query: "payment OR liability", want: "payment OR liability OR indemnity"},
		{query: "   ", want: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, exp.Expand(tt.query))
		})
	}
}

func TestSynonymExpander_Cap(t *testing.T) {
	exp := NewSynonymExpander(map[string][]string{
		"x": {"x1", "x2", "x3"},
		"y": {"y1", "y2", "y3"},
		"z": {"z1", "z2", "z3"},
	})

	got := exp.Expand("x y z")
	assert.Contains(t, got, "x y z")
	assert.LessOrEqual(t, len(splitOr(got)), maxExpandedGroups)
}

func TestSynonymExpander_NilIsIdentity(t *testing.T) {
	var exp *SynonymExpander
	assert.Equal(t, "anything", exp.Expand("anything"))
	assert.Nil(t, NewSynonymExpander(nil))
	assert.Nil(t, NewSynonymExpander(map[string][]string{"solo": nil}))
}

func splitOr(q string) []string {
	var out []string
	start := 0
	for i := 0; i+4 <= len(q); i++ {
		if q[i:i+4] == " OR " {
			out = append(out, q[start:i])
			start = i + 4
		}
	}
	return append(out, q[start:])
}
