// Package eml normalises RFC 5322 email messages, such as exported
// correspondence with opposing counsel.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxDepth bounds multipart nesting.
const maxDepth = 8

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".eml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an email into header lines followed by the body.
// The subject becomes the title.
func (n *Normaliser) Normalise(_ context.Context, name string, data []byte) (*driven.NormaliseResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, name, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	headers := []struct{ key, value string }{
		{"From", decodeHeader(msg.Header.Get("From"))},
		{"To", decodeHeader(msg.Header.Get("To"))},
		{"Date", msg.Header.Get("Date")},
		{"Subject", subject},
	}

	body, err := extractBody(msg.Header, msg.Body, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var content strings.Builder
	metadata := make(map[string]any)
	for _, h := range headers {
		if h.value == "" {
			continue
		}
		content.WriteString(h.key + ": " + h.value + "\n")
		if h.key != "Subject" {
			metadata[strings.ToLower(h.key)] = h.value
		}
	}
	content.WriteString("\n")
	content.WriteString(body)

	result := &driven.NormaliseResult{
		Title:   subject,
		Content: strings.TrimSpace(content.String()),
		Format:  "eml",
	}
	if len(metadata) > 0 {
		result.Metadata = metadata
	}
	return result, nil
}

// header is satisfied by mail.Header and textproto.MIMEHeader.
type header interface {
	Get(key string) string
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value
// when decoding fails.
func decodeHeader(value string) string {
	if value == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

func extractBody(h header, body io.Reader, depth int) (string, error) {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth || params["boundary"] == "" {
			return "", nil
		}
		return extractMultipart(body, params["boundary"], depth+1)
	}

	data, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrInvalidInput, err)
	}

	switch mediaType {
	case "text/html":
		_, text, err := html.Extract(bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		return text, nil
	case "text/plain":
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	default:
		return "", nil
	}
}

// extractMultipart prefers text/plain alternatives over HTML ones.
func extractMultipart(r io.Reader, boundary string, depth int) (string, error) {
	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Truncated messages keep whatever parts were readable.
			break
		}
		if isAttachment(part) {
			part.Close()
			continue
		}

		mediaType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		text, err := extractBody(part.Header, part, depth)
		part.Close()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if mediaType == "text/html" {
			htmlParts = append(htmlParts, text)
		} else {
			textParts = append(textParts, text)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}

func isAttachment(part *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

// decodeTransfer undoes Content-Transfer-Encoding. multipart.Reader
// already strips quoted-printable from parts, which leaves the header
// empty.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
