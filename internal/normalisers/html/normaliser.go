package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the <title> and the visible text of a page.
func (n *Normaliser) Normalise(_ context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	title, text, err := Extract(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &driven.NormaliseResult{
		Title:   title,
		Content: text,
		Format:  "html",
	}, nil
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// block elements start and end a line.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Ol: true, atom.Ul: true, atom.Dd: true, atom.Dt: true,
}

// Extract returns the page title and its text, one block per line.
// Entities are decoded. Also used for HTML email bodies.
func Extract(r io.Reader) (title, text string, err error) {
	z := html.NewTokenizer(r)
	var (
		out       strings.Builder
		line      strings.Builder
		titleText strings.Builder
		skipDepth int
		inTitle   bool
	)

	flush := func() {
		l := strings.Join(strings.Fields(line.String()), " ")
		line.Reset()
		if l == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(l)
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				flush()
				return strings.Join(strings.Fields(titleText.String()), " "), out.String(), nil
			}
			return "", "", fmt.Errorf("parse html: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case skipped[tok.DataAtom]:
				if tt == html.StartTagToken {
					skipDepth++
				}
			case tok.DataAtom == atom.Title:
				inTitle = tt == html.StartTagToken
			case block[tok.DataAtom]:
				flush()
			}

		case html.EndTagToken:
			tok := z.Token()
			switch {
			case skipped[tok.DataAtom]:
				if skipDepth > 0 {
					skipDepth--
				}
			case tok.DataAtom == atom.Title:
				inTitle = false
			case block[tok.DataAtom]:
				flush()
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if inTitle {
				titleText.Write(z.Text())
				continue
			}
			line.Write(z.Text())
			line.WriteByte(' ')
		}
	}
}
