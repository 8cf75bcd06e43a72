// Package search provides the retrieval view for the TUI.
package search

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context
	limit     int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPrompt(s, "Search", "Search your documents..."),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km.ListHelp()),
		retrieval:  retrieval,
		ctx:        context.Background(),
		limit:      10,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetLimit sets the maximum number of results per search.
func (v *View) SetLimit(limit int) {
	if limit > 0 {
		v.limit = limit
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		if keymap.Matches(msg.String(), v.keymap.Submit) {
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.statusbar.Set(status.StateBusy, "Searching...")
			return v, v.performSearch(query)
		}
		if keymap.Matches(msg.String(), v.keymap.Back) && !v.list.IsEmpty() {
			v.focusResults()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Open):
		if result := v.list.SelectedResult(); result != nil {
			id := result.DocumentID
			return v, func() tea.Msg {
				return messages.DocumentRequested{DocumentID: id}
			}
		}
	case keymap.Matches(msg.String(), v.keymap.Edit):
		v.focusInput = true
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

func (v *View) performSearch(query string) tea.Cmd {
	retrieval := v.retrieval
	ctx := v.ctx
	limit := v.limit
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		results := retrieval.Search(ctx, domain.RetrievalQuery{Text: query, Limit: limit})
		return messages.SearchCompleted{Query: query, Results: results}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.err = nil
	v.list.SetResults(msg.Results)
	if len(msg.Results) == 0 {
		v.statusbar.Set(status.StateComplete, fmt.Sprintf("No results for %q", msg.Query))
		return
	}
	v.statusbar.Set(status.StateComplete, fmt.Sprintf("%d results", len(msg.Results)))
	v.focusResults()
}

func (v *View) focusResults() {
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// Results returns the current search results.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() tea.Cmd {
	v.focusInput = true
	v.input.Reset()
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	return v.input.Focus()
}
