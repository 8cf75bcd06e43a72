package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrompt(t *testing.T) {
	p := NewPrompt(nil, "Ask", "Ask about your documents...")

	require.NotNil(t, p)
	assert.True(t, p.Focused())
	assert.Empty(t, p.Value())
	assert.Contains(t, p.View(), "Ask: ")
}

func TestPrompt_TypingUpdatesValue(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("indemnity")})

	assert.Equal(t, "indemnity", p.Value())
}

func TestPrompt_SetValueAndReset(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	p.SetValue("governing law")
	assert.Equal(t, "governing law", p.Value())

	p.Reset()
	assert.Empty(t, p.Value())
}

func TestPrompt_FocusBlur(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	p.Blur()
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())
}

func TestPrompt_SetWidth(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p.SetWidth(100)
	assert.Equal(t, 100, p.Width())

	p.SetWidth(10)
	assert.Equal(t, 10, p.Width())
}
