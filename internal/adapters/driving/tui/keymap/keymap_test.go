package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		keyStr  string
		binding key.Binding
	}{
		{"quit", "ctrl+c", km.Quit},
		{"back", "esc", km.Back},
		{"tab", "tab", km.NextView},
		{"enter submits", "enter", km.Submit},
		{"enter opens", "enter", km.Open},
		{"vim up", "k", km.Up},
		{"arrow down", "down", km.Down},
		{"page up", "pgup", km.PageUp},
		{"half page down", "ctrl+d", km.PageDown},
		{"edit", "/", km.Edit},
		{"clear", "ctrl+n", km.Clear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Matches(tt.keyStr, tt.binding))
		})
	}
}

func TestMatches_NoMatch(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Submit))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ChatHelp(), 5)
	assert.Len(t, km.ListHelp(), 5)
	assert.Len(t, km.ReaderHelp(), 4)
	for _, b := range km.ChatHelp() {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}
