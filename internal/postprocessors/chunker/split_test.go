package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clause = "The Tenant shall indemnify the Landlord against all claims arising from the use of the premises. " +
	"Liability under this clause survives termination of the lease! " +
	"Does the Landlord carry insurance for structural defects? " +
	"Notices must be delivered in writing to the registered address."

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", 100, 0))
	assert.Empty(t, Split("   ", 100, 0))
	assert.Empty(t, Split("...!?", 100, 0))
}

func TestSplit_DegenerateSize(t *testing.T) {
	chunks := Split("A. B. C.", 1, 0)

	assert.LessOrEqual(t, len(chunks), 3)
	assert.Equal(t, []string{"A", "B", "C"}, chunks)
}

func TestSplit_GreedyAccumulation(t *testing.T) {
	chunks := Split("One. Two. Three. Four.", 10, 0)

	// "One. Two" is 8 runes; adding ". Three" would exceed 10.
	assert.Equal(t, []string{"One. Two", "Three", "Four"}, chunks)
}

func TestSplit_SizeBound(t *testing.T) {
	for _, max := range []int{40, 80, 120, 500} {
		for _, chunk := range Split(clause, max, 0) {
			if utf8.RuneCountInString(chunk) > max {
				assert.NotContains(t, chunk, sentenceJoin,
					"only single-sentence chunks may exceed max %d: %q", max, chunk)
			}
		}
	}
}

func TestSplit_OversizedSentenceKeptWhole(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end"
	chunks := Split("Short one. "+long+". Tail here.", 50, 0)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Short one", chunks[0])
	assert.Equal(t, strings.TrimSpace(long), chunks[1])
	assert.Equal(t, "Tail here", chunks[2])
}

func TestSplit_ReconstructsSentencesInOrder(t *testing.T) {
	chunks := Split(clause, 120, 0)

	var rebuilt []string
	for _, c := range chunks {
		rebuilt = append(rebuilt, strings.Split(c, sentenceJoin)...)
	}
	assert.Equal(t, sentences(clause), rebuilt)
}

func TestSplit_MinimumLengthFilter(t *testing.T) {
	text := "Ok. This sentence is comfortably longer than fifty characters overall."

	chunks := Split(text, 20, DefaultMinChunkLength)

	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0], "This sentence"))
}

func TestSplit_Idempotent(t *testing.T) {
	first := Split(clause, 90, 10)
	second := Split(clause, 90, 10)
	assert.Equal(t, first, second)
}

func TestSplit_NonPositiveMaxUsesDefault(t *testing.T) {
	assert.Equal(t, Split(clause, DefaultMaxChunkSize, 0), Split(clause, 0, 0))
	assert.Equal(t, Split(clause, 100, 0), Split(clause, 100, -5))
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	// Each sentence is 5 runes but 10 bytes.
	chunks := Split("ééééé. ààààà.", 12, 0)
	assert.Equal(t, []string{"ééééé. ààààà"}, chunks)
}
