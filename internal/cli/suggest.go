// Package cli provides a lightweight CLI framework with help text,
// subcommand dispatch, and "did you mean?" suggestions.
package cli

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest returns the best matching candidate for input, or "" if input
// fuzzy-matches none of them. Matching is ordered by fuzzy.RankFind's edit
// distance over the subsequence match, closest first.
func Suggest(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFind(input, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
