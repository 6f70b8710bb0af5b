package domain

import (
	"strings"

	"equilex/internal/core/rulecatalog"
)

// Bundle is one resolution request: raw strings per category, already
// segmented upstream. Empty categories are skipped
type Bundle struct {
	Statuses  map[rulecatalog.StatusKind][]string `json:"statuses,omitempty"`
	PlanTypes []string                            `json:"plan_types,omitempty"`
	Countries []string                            `json:"countries,omitempty"`
	Dates     []string                            `json:"dates,omitempty"`
	Metrics   []string                            `json:"metrics,omitempty"`
	Companies []string                            `json:"companies,omitempty"`
	People    []string                            `json:"people,omitempty"`
}

// Empty reports whether the bundle carries nothing to resolve
func (b Bundle) Empty() bool {
	return len(b.Statuses) == 0 && len(b.PlanTypes) == 0 && len(b.Countries) == 0 &&
		len(b.Dates) == 0 && len(b.Metrics) == 0 && len(b.Companies) == 0 && len(b.People) == 0
}

// FlatText serializes every raw string for override-keyword scanning
func (b Bundle) FlatText() string {
	var parts []string
	for _, vals := range b.Statuses {
		parts = append(parts, vals...)
	}
	parts = append(parts, b.PlanTypes...)
	parts = append(parts, b.Countries...)
	parts = append(parts, b.Dates...)
	parts = append(parts, b.Metrics...)
	parts = append(parts, b.Companies...)
	parts = append(parts, b.People...)
	return strings.Join(parts, " ")
}

// Clarification is one ambiguous lookup needing a caller decision
type Clarification struct {
	Category string  `json:"category"`
	Query    string  `json:"query"`
	Options  []Value `json:"options"`
}

// FilterSet is the batch resolution output. Filters maps canonical filter
// names to resolved values; the engine keeps no reference after return
type FilterSet struct {
	Filters            map[string][]Value `json:"filters"`
	NeedsClarification bool               `json:"needs_clarification,omitempty"`
	Clarifications     []Clarification    `json:"clarifications,omitempty"`
}

// NewFilterSet returns an empty FilterSet ready for aggregation
func NewFilterSet() *FilterSet {
	return &FilterSet{Filters: make(map[string][]Value)}
}

// Add appends v under the canonical filter name
func (f *FilterSet) Add(name string, v Value) {
	f.Filters[name] = append(f.Filters[name], v)
}

// Has reports whether the filter name already carries a value
func (f *FilterSet) Has(name string) bool { return len(f.Filters[name]) > 0 }
