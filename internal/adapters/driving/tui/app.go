package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/views/search"
)

// tabOrder is the cycle followed by the NextView binding.
var tabOrder = []messages.ViewType{messages.ViewChat, messages.ViewSearch, messages.ViewDocuments}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView      *chat.View
	searchView    *search.View
	documentsView *documents.View
	documentView  *doccontent.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		chatView:      chat.NewView(s, km, ports.Chat),
		searchView:    search.NewView(s, km, ports.Retrieval),
		documentsView: documents.NewView(s, km, ports.Document),
		documentView:  doccontent.NewView(s, km, ports.Document),
		currentView:   messages.ViewChat,
	}, nil
}

// WithContext sets the context used by every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.documentView.WithContext(ctx)
	return a
}

// SetDocumentScope restricts chat retrieval to the given documents.
func (a *App) SetDocumentScope(ids []string) {
	a.chatView.SetDocumentScope(ids)
}

// SetSearchLimit sets the number of results the search view asks for.
func (a *App) SetSearchLimit(limit int) {
	a.searchView.SetLimit(limit)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("lexrag"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keymap.NextView) && a.currentView != messages.ViewDocument {
			return a, a.switchTo(nextView(a.currentView))
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnswerReceived, spinner.TickMsg:
		// The chat view keeps working while another view is shown.
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentRequested:
		if a.ports.Document == nil {
			a.err = ErrDocumentsUnavailable
			return a, nil
		}
		returnTo := a.currentView
		if returnTo == messages.ViewDocument {
			returnTo = messages.ViewDocuments
		}
		a.currentView = messages.ViewDocument
		return a, a.documentView.Open(msg.DocumentID, returnTo)

	case messages.DocumentLoaded:
		a.documentView, cmd = a.documentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	}
	return cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.err = nil
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewSearch:
		return a.searchView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	case messages.ViewDocument:
	}
	return nil
}

func nextView(current messages.ViewType) messages.ViewType {
	for i, v := range tabOrder {
		if v == current {
			return tabOrder[(i+1)%len(tabOrder)]
		}
	}
	return messages.ViewChat
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewSearch:
		body = a.searchView.View()
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewDocument:
		body = a.documentView.View()
	default:
		body = a.chatView.View()
	}

	sections := []string{a.renderTabs(), ""}
	if a.err != nil {
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()), "")
	}
	sections = append(sections, body)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(tabOrder)+1)
	tabs = append(tabs, a.styles.Title.Render("lexrag"))
	active := a.currentView
	if active == messages.ViewDocument {
		active = messages.ViewDocuments
	}
	for _, v := range tabOrder {
		label := v.String()
		if v == active {
			tabs = append(tabs, a.styles.Selected.Render("["+label+"]"))
		} else {
			tabs = append(tabs, a.styles.Muted.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Two lines for the tab header.
	body := max(height-2, 1)
	a.chatView.SetDimensions(width, body)
	a.searchView.SetDimensions(width, body)
	a.documentsView.SetDimensions(width, body)
	a.documentView.SetDimensions(width, body)
}
