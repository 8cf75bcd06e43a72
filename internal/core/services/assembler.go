package services

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ensure Assembler implements the interface.
var _ driving.ContextAssembler = (*Assembler)(nil)

// Assembler defaults.
const (
	DefaultSnippetLength   = 200
	DefaultMaxContextChars = 12000

	blockSeparator = "\n\n---\n\n"
	ellipsis       = "..."
)

// Assembler renders retrieval results as grounding context with
// citations in the same order.
type Assembler struct {
	snippetLength   int
	maxContextChars int
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithSnippetLength sets the citation preview cap in characters.
func WithSnippetLength(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.snippetLength = n
		}
	}
}

// WithMaxContextChars caps the rendered context. Zero disables the cap.
func WithMaxContextChars(n int) AssemblerOption {
	return func(a *Assembler) {
		if n >= 0 {
			a.maxContextChars = n
		}
	}
}

// NewAssembler creates an assembler.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		snippetLength:   DefaultSnippetLength,
		maxContextChars: DefaultMaxContextChars,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders each result as "Document: <title>\nContent: <content>"
// joined by a separator. Source N always describes block N. A block that
// would overflow the context cap is left out along with its source; the
// first block is always kept.
func (a *Assembler) Assemble(results []domain.RetrievalResult) domain.AssembledContext {
	out := domain.AssembledContext{Sources: []domain.Source{}}
	if len(results) == 0 {
		return out
	}

	var b strings.Builder
	for _, r := range results {
		block := "Document: " + r.DocumentTitle + "\nContent: " + r.Content

		size := len(block)
		if b.Len() > 0 {
			size += len(blockSeparator)
		}
		if a.maxContextChars > 0 && b.Len() > 0 && b.Len()+size > a.maxContextChars {
			break
		}

		if b.Len() > 0 {
			b.WriteString(blockSeparator)
		}
		b.WriteString(block)

		out.Sources = append(out.Sources, domain.Source{
			Index:         len(out.Sources) + 1,
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
			Score:         r.Score,
			ScoreKind:     r.ScoreKind,
			Snippet:       Snippet(r.Content, a.snippetLength),
		})
	}

	out.Text = b.String()
	return out
}

// Snippet trims content to at most limit runes plus an ellipsis. When a
// space falls in the last fifth of the window the cut is made there.
func Snippet(content string, limit int) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if limit <= 0 || len(runes) <= limit {
		return content
	}

	cut := limit
	floor := limit - limit/5
	for i := limit; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + ellipsis
}
