// Package chat provides the grounded question-and-answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lexrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")

// maxHistory bounds the messages replayed to the model on each question.
const maxHistory = 12

// turn is one question and, once it arrives, its answer.
type turn struct {
	question string
	answer   *domain.ChatAnswer
	err      error
}

// View is the chat view: a scrolling transcript above a prompt.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	prompt     *input.Prompt
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	chat   driving.ChatService
	ctx    context.Context
	docIDs []string

	turns   []turn
	history []domain.ChatMessage
	busy    bool
	width   int
	height  int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	v := &View{
		styles:     s,
		keymap:     km,
		prompt:     input.NewPrompt(s, "Ask", "Ask about your documents..."),
		transcript: viewport.New(80, 16),
		spinner:    sp,
		statusbar:  status.NewBar(s, km.ChatHelp()),
		chat:       chat,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocumentScope restricts retrieval to the given documents.
func (v *View) SetDocumentScope(ids []string) {
	v.docIDs = ids
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.prompt.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Submit):
		return v, v.submit()
	case keymap.Matches(k, v.keymap.Clear):
		if !v.busy {
			v.Clear()
		}
		return v, nil
	case keymap.Matches(k, v.keymap.PageUp), keymap.Matches(k, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.prompt.Value())
	if question == "" || v.busy {
		return nil
	}

	v.prompt.Reset()
	v.turns = append(v.turns, turn{question: question})
	v.busy = true
	v.statusbar.Set(status.StateBusy, "Thinking...")
	v.refresh()

	return tea.Batch(v.ask(question), v.spinner.Tick)
}

func (v *View) ask(question string) tea.Cmd {
	svc := v.chat
	ctx := v.ctx
	history := append([]domain.ChatMessage(nil), v.history...)
	docIDs := v.docIDs
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoChatService}
		}
		answer, err := svc.Ask(ctx, question, history, docIDs)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	if len(v.turns) == 0 {
		return
	}
	last := &v.turns[len(v.turns)-1]
	last.answer = msg.Answer
	last.err = msg.Err

	switch {
	case msg.Err != nil:
		v.statusbar.Set(status.StateError, msg.Err.Error())
	case msg.Answer == nil:
		v.statusbar.Clear()
	default:
		v.history = append(v.history,
			domain.ChatMessage{Role: domain.ChatRoleUser, Content: msg.Question},
			domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: msg.Answer.Answer},
		)
		if len(v.history) > maxHistory {
			v.history = v.history[len(v.history)-maxHistory:]
		}
		v.statusbar.Set(status.StateComplete, fmt.Sprintf("%d sources", len(msg.Answer.Sources)))
	}
	v.refresh()
}

// Clear starts a new conversation.
func (v *View) Clear() {
	v.turns = nil
	v.history = nil
	v.statusbar.Clear()
	v.prompt.Reset()
	v.refresh()
}

// refresh re-renders the transcript and keeps the newest turn visible.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about your documents. Answers cite the passages they use.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	blocks := make([]string, 0, len(v.turns))
	for i := range v.turns {
		blocks = append(blocks, v.renderTurn(&v.turns[i], wrap))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(t *turn, wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(v.styles.UserSpeaker.Render("You: "))
	b.WriteString(wrap.Render(t.question))
	b.WriteString("\n")
	b.WriteString(v.styles.AssistantSpeaker.Render("lexrag: "))

	switch {
	case t.err != nil:
		b.WriteString(v.styles.Error.Render(describeError(t.err)))
	case t.answer == nil:
		b.WriteString(v.spinner.View())
	default:
		b.WriteString(wrap.Render(t.answer.Answer))
		if !t.answer.Grounded {
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("No matching passages were found; this answer is not grounded in your documents."))
		}
		for _, src := range t.answer.Sources {
			b.WriteString("\n")
			b.WriteString(v.styles.Citation.Render(fmt.Sprintf("[%d]", src.Index)))
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf(" %s (%.2f %s)", sourceTitle(src), src.Score, src.ScoreKind)))
		}
	}
	return b.String()
}

func sourceTitle(src domain.Source) string {
	if src.DocumentTitle != "" {
		return src.DocumentTitle
	}
	return src.DocumentID
}

func describeError(err error) string {
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return "The language model is unavailable. Check `lexrag settings llm`."
	}
	return "Error: " + err.Error()
}

// View renders the chat view.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.transcript.View(),
		"",
		v.prompt.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = width
	v.transcript.Height = max(height-6, 3)
	v.prompt.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Busy reports whether a question is awaiting its answer.
func (v *View) Busy() bool {
	return v.busy
}

// History returns the messages that will accompany the next question.
func (v *View) History() []domain.ChatMessage {
	return v.history
}

// Turns returns the number of questions asked in this conversation.
func (v *View) Turns() int {
	return len(v.turns)
}
