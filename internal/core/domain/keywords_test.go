package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeywordQuery_Terms(t *testing.T) {
	q := ParseKeywordQuery("Liability clause")

	assert.Len(t, q.Groups, 1)
	assert.Equal(t, []KeywordTerm{{Words: []string{"liability"}}, {Words: []string{"clause"}}}, q.Groups[0])
	assert.Empty(t, q.Excluded)
}

func TestParseKeywordQuery_PhraseAndExclusion(t *testing.T) {
	q := ParseKeywordQuery(`"limitation of liability" -indemnity`)

	assert.Len(t, q.Groups, 1)
	assert.True(t, q.Groups[0][0].Phrase())
	assert.Equal(t, "limitation of liability", q.Groups[0][0].Text())
	assert.Equal(t, []KeywordTerm{{Words: []string{"indemnity"}}}, q.Excluded)
}

func TestParseKeywordQuery_Or(t *testing.T) {
	q := ParseKeywordQuery("termination OR cancellation notice")

	assert.Len(t, q.Groups, 2)
	assert.Equal(t, "termination", q.Groups[0][0].Text())
	assert.Len(t, q.Groups[1], 2)
}

func TestParseKeywordQuery_PunctuationOnly(t *testing.T) {
	assert.True(t, ParseKeywordQuery("?? --- ...").IsEmpty())
	assert.True(t, ParseKeywordQuery("").IsEmpty())
}

func TestParseKeywordQuery_OnlyExclusions(t *testing.T) {
	q := ParseKeywordQuery("-arbitration")

	assert.True(t, q.IsEmpty())
	assert.Len(t, q.Excluded, 1)
}

func TestParseKeywordQuery_UnterminatedQuote(t *testing.T) {
	q := ParseKeywordQuery(`"force majeure`)

	assert.Len(t, q.Groups, 1)
	assert.Equal(t, "force majeure", q.Groups[0][0].Text())
}

func TestParseKeywordQuery_DropsStopWords(t *testing.T) {
	q := ParseKeywordQuery("What is the liability clause?")

	assert.Len(t, q.Groups, 1)
	assert.Equal(t, []KeywordTerm{{Words: []string{"liability"}}, {Words: []string{"clause"}}}, q.Groups[0])
}

func TestParseKeywordQuery_StopWordsKeptWhereTheyMatter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		terms []string
	}{
		{"quoted phrase", `"limitation of liability"`, []string{"limitation of liability"}},
		{"only stop words", "what is it", []string{"what", "is", "it"}},
		{"modal verbs", "tenant shall not sublet", []string{"tenant", "shall", "not", "sublet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, term := range ParseKeywordQuery(tt.query).Terms() {
				got = append(got, term.Text())
			}
			assert.Equal(t, tt.terms, got)
		})
	}
}

func TestParseKeywordQuery_StopWordExclusionKept(t *testing.T) {
	q := ParseKeywordQuery("indemnity -the")

	assert.Equal(t, []KeywordTerm{{Words: []string{"the"}}}, q.Excluded)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"non", "compete", "2024"}, Tokenize("Non-Compete (2024)."))
	assert.Empty(t, Tokenize("  ,. "))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
