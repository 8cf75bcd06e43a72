package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func sampleResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{ChunkID: "c1", DocumentID: "d1", DocumentTitle: "Lease", Content: "The tenant shall pay rent.", Score: 0.91, ScoreKind: domain.ScoreKindVector},
		{ChunkID: "c2", DocumentID: "d2", DocumentTitle: "", Content: "Indemnity clause", Score: domain.SentinelScore, ScoreKind: domain.ScoreKindLexical},
	}
}

func TestResultList_Empty(t *testing.T) {
	r := NewResultList(nil)

	assert.Contains(t, r.View(), "No results")
	assert.Nil(t, r.SelectedResult())
	assert.Equal(t, 0, r.Count())
}

func TestResultList_RendersScoreKind(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(120, 20)
	r.SetResults(sampleResults())

	view := r.View()
	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "Lease")
	assert.Contains(t, view, "0.91 vector")
	assert.Contains(t, view, "0.80 lexical")
	assert.Contains(t, view, "(Untitled)")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, r.Selected())

	sel := r.SelectedResult()
	require.NotNil(t, sel)
	assert.Equal(t, "d1", sel.DocumentID)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(sampleResults())
	r.MoveDown()

	r.SetResults(sampleResults()[:1])

	assert.Equal(t, 0, r.Selected())
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
}
