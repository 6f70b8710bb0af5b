// Package match implements the table-driven matching strategies: an exact
// dictionary hit and a fuzzy scan over a table's keys
package match

import (
	"equilex/internal/core/rulecatalog"
	"equilex/internal/core/similarity"
	"equilex/internal/core/textnorm"
)

// Result is one successful table match
type Result struct {
	// Canonical is the mapped value
	Canonical string
	// Matched is the folded table key that won
	Matched string
	// Score is the 0-100 similarity; 100 for exact hits
	Score int
}

// Exact folds input and looks it up directly. Miss means "try the next
// strategy", not a final outcome
func Exact(t *rulecatalog.Table, input string) (Result, bool) {
	v, ok := t.Lookup(input)
	if !ok {
		return Result{}, false
	}
	return Result{Canonical: v, Matched: textnorm.Canonical(input), Score: 100}, true
}

// Fuzzy scores input against every key in table order and keeps the first
// key reaching the maximum. A result at or above threshold matches;
// anything lower is a miss. Iteration order is the table's declaration
// order, which makes ties reproducible
func Fuzzy(t *rulecatalog.Table, input string, threshold int, method string) (Result, bool) {
	folded := textnorm.Canonical(input)
	if folded == "" {
		return Result{}, false
	}

	score := similarity.TokenSortRatio
	if method == "ratio" {
		score = similarity.Ratio
	}

	best := Result{Score: -1}
	for _, key := range t.Keys() {
		s := score(folded, key)
		if s > best.Score {
			v, _ := t.Get(key)
			best = Result{Canonical: v, Matched: key, Score: s}
		}
	}

	if best.Score < threshold {
		return Result{}, false
	}
	return best, true
}
