package domain

import (
	"math"
	"strings"
	"unicode"
)

// KeywordTerm is a single word or a quoted phrase of a keyword query.
type KeywordTerm struct {
	// Words are the lower-cased tokens of the term. A phrase has more
	// than one and matches only when they appear consecutively.
	Words []string
}

// Phrase returns true for multi-word terms.
func (t KeywordTerm) Phrase() bool {
	return len(t.Words) > 1
}

// Text returns the words joined by spaces.
func (t KeywordTerm) Text() string {
	return strings.Join(t.Words, " ")
}

// KeywordQuery is a parsed web-search style query: terms are ANDed within
// a group, groups are joined by OR, and excluded terms veto a match.
type KeywordQuery struct {
	Groups   [][]KeywordTerm
	Excluded []KeywordTerm
}

// IsEmpty returns true when the query has nothing to match on.
func (q KeywordQuery) IsEmpty() bool {
	return len(q.Groups) == 0
}

// Terms returns every positive term across groups.
func (q KeywordQuery) Terms() []KeywordTerm {
	var out []KeywordTerm
	for _, g := range q.Groups {
		out = append(out, g...)
	}
	return out
}

// ParseKeywordQuery parses terms, "quoted phrases", -exclusions and the
// OR operator. Punctuation inside a term splits it into words. English
// stop words are dropped from unquoted terms, so a question such as
// "What is the liability clause?" matches on liability and clause. A query
// made only of stop words keeps them.
func ParseKeywordQuery(text string) KeywordQuery {
	tokens := splitQuery(text)
	if q := parseTokens(tokens, true); !q.IsEmpty() {
		return q
	}
	return parseTokens(tokens, false)
}

func parseTokens(tokens []queryToken, dropStopWords bool) KeywordQuery {
	var q KeywordQuery
	var group []KeywordTerm

	closeGroup := func() {
		if len(group) > 0 {
			q.Groups = append(q.Groups, group)
			group = nil
		}
	}

	for _, tok := range tokens {
		if tok.raw == "OR" && !tok.quoted {
			closeGroup()
			continue
		}
		words := Tokenize(tok.raw)
		if dropStopWords && !tok.quoted && !tok.negated {
			words = withoutStopWords(words)
		}
		if len(words) == 0 {
			continue
		}
		term := KeywordTerm{Words: words}
		if tok.negated {
			q.Excluded = append(q.Excluded, term)
			continue
		}
		group = append(group, term)
	}
	closeGroup()
	return q
}

type queryToken struct {
	raw     string
	quoted  bool
	negated bool
}

func splitQuery(text string) []queryToken {
	var out []queryToken
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		tok := queryToken{}
		if runes[i] == '-' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			tok.negated = true
			i++
		}
		if runes[i] == '"' {
			tok.quoted = true
			i++
			start := i
			for i < len(runes) && runes[i] != '"' {
				i++
			}
			tok.raw = string(runes[start:i])
			i++ // closing quote, or past the end
		} else {
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) {
				i++
			}
			tok.raw = string(runes[start:i])
		}
		out = append(out, tok)
	}
	return out
}

// stopWords are English function and question words. Modal and negation
// words (shall, may, must, not, no) are not stop words.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about an and any are as at be been being but by
		can could did do does for from had has have how i if in into is it its me my
		of on or our please should so than that the their them then there these they
		this those to was we were what when where which who whom why with would you your`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether a lower-cased word is ignored in unquoted
// query terms.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

func withoutStopWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// Tokenize lower-cases text and splits it into letter and digit runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
