// Package docx normalises Word documents by reading the OOXML parts
// inside the zip container.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"

	// maxPartSize guards against zip bombs.
	maxPartSize = 64 << 20
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text, one paragraph per line. Tabs and
// breaks inside a paragraph become spaces and newlines.
func (n *Normaliser) Normalise(_ context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a zip container", domain.ErrInvalidInput, name)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	content, err := paragraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, name, err)
	}

	result := &driven.NormaliseResult{
		Content: content,
		Format:  "docx",
	}
	if core, err := readPart(reader, corePart); err == nil {
		var props coreProperties
		if xml.Unmarshal(core, &props) == nil {
			result.Title = strings.TrimSpace(props.Title)
			if creator := strings.TrimSpace(props.Creator); creator != "" {
				result.Metadata = map[string]any{"author": creator}
			}
		}
	}
	return result, nil
}

type coreProperties struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(data) > maxPartSize {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, name, maxPartSize)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, name)
}

// paragraphs streams document.xml, so nested tables and text boxes are
// read in document order.
func paragraphs(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		out    []string
		para   strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte(' ')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(para.String()); line != "" {
					out = append(out, line)
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return strings.Join(out, "\n"), nil
}
