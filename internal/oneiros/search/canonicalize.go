package search

import (
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

// fold lowercases and collapses runs of non-alphanumeric characters to a
// single space, the way a query needs to be shaped before it is handed
// to an Aho-Corasick automaton built from the same folding rule.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// significantTerms splits a query into its non-stopword terms, used to
// drive highlighting so that common words ("the", "of") don't dominate
// the snippet.
func significantTerms(query string) []string {
	words := strings.Fields(fold(query))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if stopwords.English.IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

const snippetRadius = 48

// snippet builds a short excerpt of text centered on the first
// occurrence of any term, using an Aho-Corasick automaton so multiple
// terms are located in a single pass over the text.
func snippet(text string, terms []string) string {
	if len(terms) == 0 || text == "" {
		return truncate(text, snippetRadius*2)
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		Build()
	if err != nil {
		return truncate(text, snippetRadius*2)
	}

	folded := fold(text)
	matches := automaton.FindAllOverlapping([]byte(folded))
	if len(matches) == 0 {
		return truncate(text, snippetRadius*2)
	}

	center := matches[0].Start
	if center > len(text) {
		center = 0
	}
	start := center - snippetRadius
	if start < 0 {
		start = 0
	}
	end := center + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	excerpt := text[start:end]
	if start > 0 {
		excerpt = "…" + excerpt
	}
	if end < len(text) {
		excerpt = excerpt + "…"
	}
	return excerpt
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
