// Package markdown normalises Markdown files into plain text.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// frontMatter holds the fields read from a leading YAML block.
type frontMatter struct {
	Title   string   `yaml:"title"`
	Parties []string `yaml:"parties"`
	Date    string   `yaml:"date"`
}

// Normalise strips Markdown syntax. The title comes from front matter,
// then the first H1.
func (n *Normaliser) Normalise(_ context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	text, err := plaintext.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	meta, body := splitFrontMatter(text)
	title := meta.Title
	if title == "" {
		title = firstHeading(body)
	}

	result := &driven.NormaliseResult{
		Title:   title,
		Content: stripMarkdown(body),
		Format:  "markdown",
	}
	if len(meta.Parties) > 0 || meta.Date != "" {
		result.Metadata = map[string]any{}
		if len(meta.Parties) > 0 {
			result.Metadata["parties"] = meta.Parties
		}
		if meta.Date != "" {
			result.Metadata["date"] = meta.Date
		}
	}
	return result, nil
}

// splitFrontMatter separates a leading "---" YAML block. Malformed
// front matter is left in the body.
func splitFrontMatter(text string) (frontMatter, string) {
	var meta frontMatter
	if !strings.HasPrefix(text, "---\n") {
		return meta, text
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, text
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return frontMatter{}, text
	}
	body := rest[end+len("\n---"):]
	return meta, strings.TrimLeft(body, "-\n")
}

func firstHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

var (
	fencedCode    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*|~~)(\S(?:.*?\S)?)(\*\*|__|\*|~~)`)
	blockquote    = regexp.MustCompile(`(?m)^>[ \t]?`)
	horizontal    = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	tableRule     = regexp.MustCompile(`(?m)^\|?[ \t]*:?-{3,}:?[ \t]*(\|[ \t]*:?-{3,}:?[ \t]*)*\|?[ \t]*$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes formatting. Clause numbering such as "1." and
// "(a)" is kept, and code blocks keep their content.
func stripMarkdown(content string) string {
	content = fencedCode.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = tableRule.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
