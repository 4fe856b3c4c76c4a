// ABOUTME: Candidate filtering for mention queries: case-folded prefix or fuzzy ranking
// ABOUTME: Prefix keeps directory order; fuzzy delegates scoring to sahilm/fuzzy

package mention

import (
	"strings"

	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchMode selects how candidates are filtered.
type MatchMode int

const (
	// MatchPrefix keeps names whose case-folded form starts with the query.
	MatchPrefix MatchMode = iota
	// MatchFuzzy ranks names by fuzzy subsequence score.
	MatchFuzzy
)

// String returns the configuration name of the mode.
func (m MatchMode) String() string {
	if m == MatchFuzzy {
		return "fuzzy"
	}
	return "prefix"
}

// ParseMatchMode maps "prefix" / "fuzzy" to a mode; anything else is prefix.
func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), "fuzzy") {
		return MatchFuzzy
	}
	return MatchPrefix
}

// fold normalizes to NFC and applies Unicode case folding.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Filter returns the people matching query under mode. An empty query
// matches everyone in directory order.
func Filter(mode MatchMode, query string, people []directory.Person) []directory.Person {
	if query == "" {
		return append([]directory.Person(nil), people...)
	}
	if mode == MatchFuzzy {
		matches := fuzzy.FindFrom(query, personSource(people))
		out := make([]directory.Person, len(matches))
		for i, m := range matches {
			out[i] = people[m.Index]
		}
		return out
	}

	q := fold(query)
	var out []directory.Person
	for _, p := range people {
		if strings.HasPrefix(fold(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// personSource exposes names to fuzzy.FindFrom without copying.
type personSource []directory.Person

func (s personSource) String(i int) string { return s[i].Name }
func (s personSource) Len() int            { return len(s) }
