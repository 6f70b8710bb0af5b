package rulecatalog

import "equilex/internal/core/textnorm"

// Table is an ordered variant -> canonical mapping. Keys are stored in
// canonical folded form; declaration order is preserved so fuzzy scoring
// has a reproducible tie-break (first declared key at the max score wins)
type Table struct {
	keys  []string
	index map[string]string
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]string)}
}

// Add maps variant to canonical. The variant key is folded first.
// Duplicate keys keep their original position; the value is overwritten
// (last writer wins)
func (t *Table) Add(variant, canonical string) {
	k := textnorm.Canonical(variant)
	if k == "" {
		return
	}
	if _, ok := t.index[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.index[k] = canonical
}

// Lookup folds input and returns the canonical value on a direct hit
func (t *Table) Lookup(input string) (string, bool) {
	v, ok := t.index[textnorm.Canonical(input)]
	return v, ok
}

// Keys returns the folded keys in declaration order. Callers must not
// mutate the returned slice
func (t *Table) Keys() []string { return t.keys }

// Get returns the canonical value for an already-folded key
func (t *Table) Get(foldedKey string) (string, bool) {
	v, ok := t.index[foldedKey]
	return v, ok
}

// Len returns the number of distinct keys
func (t *Table) Len() int { return len(t.keys) }
