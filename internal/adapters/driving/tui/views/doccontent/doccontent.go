// Package doccontent provides the document reader view for the TUI.
package doccontent

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when loading without a document service.
var ErrNoDocumentService = fmt.Errorf("document service not available")

// View shows a document's text followed by a summary of its chunks.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	documentID   string
	document     *domain.Document
	chunks       []domain.Chunk
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
	returnTo     messages.ViewType
}

// NewView creates a new document reader view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		returnTo:        messages.ViewDocuments,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open resets the view and loads the document. Esc returns to returnTo.
func (v *View) Open(documentID string, returnTo messages.ViewType) tea.Cmd {
	v.documentID = documentID
	v.document = nil
	v.chunks = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	v.returnTo = returnTo
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.documentService
	ctx := v.ctx
	id := v.documentID
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentLoaded{Err: ErrNoDocumentService}
		}
		doc, err := svc.Get(ctx, id)
		if err != nil {
			return messages.DocumentLoaded{Err: err}
		}
		chunks, err := svc.Chunks(ctx, id)
		return messages.DocumentLoaded{Document: doc, Chunks: chunks, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reader.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.document = msg.Document
		v.chunks = msg.Chunks
		v.err = nil
		v.layout()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case keymap.Matches(k, v.keymap.PageUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case keymap.Matches(k, v.keymap.PageDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case k == "home" || k == "g":
		v.scrollOffset = 0
	case k == "end" || k == "G":
		v.scrollOffset = v.maxScrollOffset()
	case keymap.Matches(k, v.keymap.Back):
		target := v.returnTo
		return v, func() tea.Msg {
			return messages.ViewChanged{View: target}
		}
	}
	return v, nil
}

// layout builds the wrapped line buffer from the document and its chunks.
func (v *View) layout() {
	if v.document == nil {
		v.lines = nil
		return
	}

	contentWidth := max(v.width-4, 20)
	wrap := lipgloss.NewStyle().Width(contentWidth)

	var b strings.Builder
	b.WriteString(v.document.Content)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Chunks (%d)\n", len(v.chunks)))
	for _, c := range v.chunks {
		b.WriteString(chunkSummary(c))
		b.WriteString("\n")
	}

	v.lines = strings.Split(wrap.Render(strings.TrimRight(b.String(), "\n")), "\n")
	if v.scrollOffset > v.maxScrollOffset() {
		v.scrollOffset = v.maxScrollOffset()
	}
}

func chunkSummary(c domain.Chunk) string {
	parts := []string{fmt.Sprintf("  #%d  %d chars", c.Position, len([]rune(c.Content)))}
	if tags := c.Tags(); len(tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(tags, ", "))
	}
	if c.IsDegraded() {
		parts = append(parts, "degraded embedding")
	}
	return strings.Join(parts, "  ")
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the reader.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = v.document.Title
		if title == "" {
			title = v.document.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading document..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.styles.Normal.Render(v.lines[i]))
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
				v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
}

// Document returns the loaded document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Chunks returns the loaded chunks.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
