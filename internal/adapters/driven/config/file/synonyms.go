package file

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure SynonymExpander implements the interface.
var _ driven.QueryExpander = (*SynonymExpander)(nil)

// maxExpandedGroups caps the OR groups one query may expand into.
const maxExpandedGroups = 16

// synonymsFile is the YAML layout:
//
//	synonyms:
//	  liability: [indemnity, indemnification]
//	  force majeure: [act of god]
type synonymsFile struct {
	Version  int                 `yaml:"version"`
	Synonyms map[string][]string `yaml:"synonyms"`
}

// SynonymExpander rewrites keyword queries so that any member of a
// synonym group also matches the others.
type SynonymExpander struct {
	// groups maps a normalised term to every term in its group,
	// itself first.
	groups map[string][]domain.KeywordTerm
}

// LoadSynonymsFile reads a synonyms file. A missing file or an empty
// path yields a nil expander and no error.
func LoadSynonymsFile(path string) (*SynonymExpander, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}

	var file synonymsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse synonyms file: %w", err)
	}
	return NewSynonymExpander(file.Synonyms), nil
}

// NewSynonymExpander builds an expander from canonical term to aliases.
// Returns nil when there is nothing to expand.
func NewSynonymExpander(synonyms map[string][]string) *SynonymExpander {
	canonicals := make([]string, 0, len(synonyms))
	for k := range synonyms {
		canonicals = append(canonicals, k)
	}
	sort.Strings(canonicals)

	groups := make(map[string][]domain.KeywordTerm)
	for _, canonical := range canonicals {
		var members []domain.KeywordTerm
		seen := make(map[string]bool)
		for _, raw := range append([]string{canonical}, synonyms[canonical]...) {
			words := domain.Tokenize(raw)
			key := strings.Join(words, " ")
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			members = append(members, domain.KeywordTerm{Words: words})
		}
		if len(members) < 2 {
			continue
		}
		for i, m := range members {
			// Later groups never steal a term claimed by an earlier one.
			if _, taken := groups[m.Text()]; taken {
				continue
			}
			rotated := append([]domain.KeywordTerm{m}, members[:i]...)
			rotated = append(rotated, members[i+1:]...)
			groups[m.Text()] = rotated
		}
	}

	if len(groups) == 0 {
		return nil
	}
	return &SynonymExpander{groups: groups}
}

// Expand returns query with every known term replaced by its alternatives.
// Each alternative becomes its own OR group, since the syntax has no
// parentheses. Exclusions are kept as typed.
func (e *SynonymExpander) Expand(query string) string {
	if e == nil {
		return query
	}
	parsed := domain.ParseKeywordQuery(query)
	if parsed.IsEmpty() {
		return query
	}

	var expanded [][]domain.KeywordTerm
	changed := false
	for _, group := range parsed.Groups {
		variants := [][]domain.KeywordTerm{nil}
		for _, term := range group {
			alts, ok := e.groups[term.Text()]
			if !ok {
				alts = []domain.KeywordTerm{term}
			} else {
				changed = true
			}
			variants = crossJoin(variants, alts, maxExpandedGroups)
		}
		expanded = append(expanded, variants...)
	}
	if !changed {
		return query
	}
	if len(expanded) > maxExpandedGroups {
		expanded = expanded[:maxExpandedGroups]
	}

	return formatKeywordQuery(domain.KeywordQuery{Groups: expanded, Excluded: parsed.Excluded})
}

// crossJoin appends each alternative to each prefix, keeping at most
// limit combinations. The original term is first in alts, so the
// unexpanded reading always survives the cap.
func crossJoin(prefixes [][]domain.KeywordTerm, alts []domain.KeywordTerm, limit int) [][]domain.KeywordTerm {
	out := make([][]domain.KeywordTerm, 0, len(prefixes)*len(alts))
	for _, alt := range alts {
		for _, prefix := range prefixes {
			if len(out) == limit {
				return out
			}
			next := make([]domain.KeywordTerm, len(prefix), len(prefix)+1)
			copy(next, prefix)
			out = append(out, append(next, alt))
		}
	}
	return out
}

func formatKeywordQuery(q domain.KeywordQuery) string {
	groups := make([]string, 0, len(q.Groups))
	for _, g := range q.Groups {
		terms := make([]string, 0, len(g))
		for _, t := range g {
			terms = append(terms, formatTerm(t))
		}
		groups = append(groups, strings.Join(terms, " "))
	}

	var b strings.Builder
	b.WriteString(strings.Join(groups, " OR "))
	for _, t := range q.Excluded {
		b.WriteString(" -")
		b.WriteString(formatTerm(t))
	}
	return b.String()
}

func formatTerm(t domain.KeywordTerm) string {
	if t.Phrase() {
		return `"` + t.Text() + `"`
	}
	return t.Text()
}
