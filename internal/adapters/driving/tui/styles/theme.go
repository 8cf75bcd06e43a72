// Package styles holds the TUI palette and the lipgloss styles built on it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a palette. Accents first, then surfaces, then status colours.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is a dark ink-and-parchment palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#D4A857"),
		Secondary:  lipgloss.Color("#7AA2C8"),
		Background: lipgloss.Color("#15181E"),
		Foreground: lipgloss.Color("#E6E1D3"),
		Muted:      lipgloss.Color("#7C8190"),
		Border:     lipgloss.Color("#3A3F4B"),
		Success:    lipgloss.Color("#8CC084"),
		Warning:    lipgloss.Color("#E5C07B"),
		Error:      lipgloss.Color("#E06C75"),
	}
}

// Styles are the rendered styles every view shares.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style

	// Selected marks the cursor row and the active tab.
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Citation renders [n] markers in answers and source lists.
	Citation lipgloss.Style

	UserSpeaker      lipgloss.Style
	AssistantSpeaker lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bold := func(c lipgloss.Color) lipgloss.Style { return fg(c).Bold(true) }
	boxed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title:    bold(theme.Primary),
		Subtitle: bold(theme.Secondary),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Help:     fg(theme.Muted).Italic(true),

		Selected: bold(theme.Background).Background(theme.Primary),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: boxed.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Background).Padding(0, 1),
		Border:     boxed,

		Citation: bold(theme.Secondary),

		UserSpeaker:      bold(theme.Success),
		AssistantSpeaker: bold(theme.Primary),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
