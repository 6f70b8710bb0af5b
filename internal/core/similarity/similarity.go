// Package similarity scores string closeness on a 0..100 scale using
// Levenshtein edit distance. Scores feed the fuzzy matching thresholds
package similarity

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"equilex/internal/core/textnorm"
)

// Ratio returns a 0..100 similarity between a and b.
// 100 means equal, 0 means nothing in common. Normalized edit distance
// over the longer input
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	if d >= longest {
		return 0
	}
	return (longest - d) * 100 / longest
}

// TokenSortRatio canonicalizes both inputs, sorts their tokens and scores
// the joined forms. Word order stops mattering: "options stock" matches
// "stock options" at 100
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	toks := textnorm.Tokens(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
