// Package textnorm canonicalizes free text before matching: Unicode
// normalization, case folding, accent stripping and whitespace collapse.
// All matchers compare normalized forms so "Français" and "francais" meet
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// chain builds the full fold pipeline. Transformers are stateful, so each
// goroutine takes its own from the pool
func chain() transform.Transformer {
	return transform.Chain(
		norm.NFKC,
		width.Fold,
		cases.Fold(),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)), // strip combining marks post-decomposition
		runes.Remove(runes.In(unicode.Cf)), // zero-width and other format runes
		norm.NFC,
	)
}

var pool = sync.Pool{New: func() any { return chain() }}

// Fold lowercases, de-accents and width-folds s.
// Returns s unchanged when transformation fails (invalid UTF-8 tails)
func Fold(s string) string {
	t := pool.Get().(transform.Transformer)
	defer pool.Put(t)
	t.Reset()

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical folds s and collapses interior whitespace to single spaces,
// trimming the ends. This is the form every catalog key and query string
// is reduced to before comparison
func Canonical(s string) string {
	return CollapseSpace(Fold(s))
}

// CollapseSpace trims s and squeezes runs of whitespace into one space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits s into canonicalized word tokens
func Tokens(s string) []string {
	return strings.Fields(Canonical(s))
}

// ContainsToken reports whether phrase occurs in text on word boundaries.
// Both arguments must already be canonical; "all" matches "show all plans"
// but not "small plans"
func ContainsToken(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
