package sqlite

import (
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ftsMatch renders a keyword query as an FTS5 MATCH expression. Every
// term is emitted as a quoted string so user punctuation can never become
// FTS5 syntax. An empty result means there is nothing to match.
func ftsMatch(q domain.KeywordQuery) string {
	if q.IsEmpty() {
		return ""
	}

	groups := make([]string, 0, len(q.Groups))
	for _, g := range q.Groups {
		terms := make([]string, 0, len(g))
		for _, t := range g {
			terms = append(terms, ftsString(t))
		}
		groups = append(groups, "("+strings.Join(terms, " AND ")+")")
	}

	expr := strings.Join(groups, " OR ")
	if len(groups) > 1 {
		expr = "(" + expr + ")"
	}
	for _, ex := range q.Excluded {
		expr += " NOT " + ftsString(ex)
	}
	return expr
}

func ftsString(t domain.KeywordTerm) string {
	return `"` + strings.ReplaceAll(t.Text(), `"`, `""`) + `"`
}

// likePattern escapes LIKE wildcards in needle and wraps it in %.
func likePattern(needle string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(needle) + "%"
}
