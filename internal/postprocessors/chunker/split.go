package chunker

import (
	"strings"
	"unicode/utf8"
)

// sentenceJoin glues sentences inside one chunk.
const sentenceJoin = ". "

// Split breaks text into sentence-bounded chunks of at most maxChunkSize
// characters. Sentences end at '.', '!' or '?'. A sentence longer than
// maxChunkSize is emitted whole as its own chunk. Chunks shorter than
// minChunkLength are dropped.
//
// Lengths are counted in runes. Split is deterministic and never fails.
func Split(text string, maxChunkSize, minChunkLength int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if minChunkLength < 0 {
		minChunkLength = 0
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if bufLen == 0 {
			return
		}
		if bufLen >= minChunkLength {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
		bufLen = 0
	}

	for _, sentence := range sentences(text) {
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+len(sentenceJoin)+n > maxChunkSize {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString(sentenceJoin)
			bufLen += len(sentenceJoin)
		}
		buf.WriteString(sentence)
		bufLen += n
	}
	flush()

	return chunks
}

// sentences splits on terminal punctuation and returns trimmed,
// non-empty candidates in order.
func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
