package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_AccentsAndStatusDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	seen := map[lipgloss.Color]string{}
	for name, c := range map[string]lipgloss.Color{
		"primary":   theme.Primary,
		"secondary": theme.Secondary,
		"success":   theme.Success,
		"warning":   theme.Warning,
		"error":     theme.Error,
	} {
		require.NotEmpty(t, string(c), name)
		if other, dup := seen[c]; dup {
			t.Errorf("%s reuses the %s colour %s", name, other, c)
		}
		seen[c] = name
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_KeepsTheme(t *testing.T) {
	theme := &Theme{Primary: "#000000"}
	assert.Same(t, theme, NewStyles(theme).Theme())
}

func TestDefaultStyles_Emphasis(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"title":     s.Title,
		"citation":  s.Citation,
		"user":      s.UserSpeaker,
		"assistant": s.AssistantSpeaker,
		"selected":  s.Selected,
	} {
		assert.True(t, style.GetBold(), name)
	}
	assert.True(t, s.Help.GetItalic())
	assert.Equal(t, lipgloss.RoundedBorder(), s.InputField.GetBorderStyle())
}

func TestDefaultStyles_Render(t *testing.T) {
	s := DefaultStyles()
	for _, style := range []lipgloss.Style{s.Title, s.Normal, s.Muted, s.Error, s.Citation, s.StatusBar} {
		assert.Contains(t, style.Render("clause 4.2"), "clause 4.2")
	}
}
