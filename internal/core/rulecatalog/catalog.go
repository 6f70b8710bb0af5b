// Package rulecatalog loads the rules document and compiles it into the
// immutable catalog the matchers run against. The document is YAML,
// validated at load; a malformed document is fatal, never a per-request
// degradation
package rulecatalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"equilex/internal/core/textnorm"
	perr "equilex/internal/platform/errors"
)

//go:embed rules.yaml
var defaultRules []byte

// StatusKind names a status mapping table
type StatusKind string

// Known status kinds. The document may declare more; these are the ones
// the engine exposes named operations for
const (
	ParticipantStatus StatusKind = "participant_status"
	VestingStatus     StatusKind = "vesting_status"
	GrantStatus       StatusKind = "grant_status"
	PlanStatus        StatusKind = "plan_status"
)

// Country is one country entry: canonical display name, ISO code and the
// literal values the reference store accepts for it
type Country struct {
	Key       string
	Canonical string
	Code      string
	DBValues  []string
}

// Region groups countries under a region code (EMEA, APAC, ...)
type Region struct {
	Key       string
	Name      string
	Countries []string // canonical country keys
}

// DatePattern is one compiled pattern with its semantic type tag.
// Value carries the fixed magnitude for patterns without a capture group
type DatePattern struct {
	RX    *regexp.Regexp
	Type  string
	Value int
}

// DateFamilies holds the three ordered pattern families. Family order and
// in-family order are match priority
type DateFamilies struct {
	Relative []DatePattern
	Fiscal   []DatePattern
	Named    []DatePattern
}

// Fuzzy holds the fuzzy matching settings
type Fuzzy struct {
	Enabled    bool
	Method     string
	Thresholds map[string]int
}

// Threshold returns the configured threshold for category, or def
func (f Fuzzy) Threshold(category string, def int) int {
	if t, ok := f.Thresholds[category]; ok {
		return t
	}
	return def
}

// Lookup describes how one entity kind is resolved against the reference
// store
type Lookup struct {
	Kind         string
	PrimaryKey   string
	SearchFields []string
	FuzzyEnabled bool
	CacheEnabled bool
	CacheTTL     time.Duration
	ScanCap      int
}

// Implicit is a default filter injected when the caller neither supplied
// the category nor used an override keyword
type Implicit struct {
	Category         string
	Default          string
	OverrideKeywords []string // stored folded
}

// Catalog is the compiled, immutable rule set. Built once at startup;
// read-only afterwards, safe for concurrent use
type Catalog struct {
	Status    map[StatusKind]*Table
	PlanTypes *Table
	Metrics   *Table

	// CountryVariants maps folded variant -> country key; Countries holds
	// the entries themselves. Same split for regions
	CountryVariants *Table
	Countries       map[string]Country
	RegionVariants  *Table
	Regions         map[string]Region

	Dates    DateFamilies
	Fuzzy    Fuzzy
	Lookups  map[string]Lookup
	Implicit map[string]Implicit
}

// LoadDefault compiles the embedded rules document
func LoadDefault() (*Catalog, error) { return Compile(defaultRules) }

// LoadFile reads and compiles a rules document from disk
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "read rules document %s", path)
	}
	return Compile(b)
}

// Compile parses, validates and compiles a rules document
func Compile(doc []byte) (*Catalog, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "parse rules document")
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(raw); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "validate rules document")
	}

	c := &Catalog{
		Status:          make(map[StatusKind]*Table, len(raw.StatusMappings)),
		PlanTypes:       NewTable(),
		Metrics:         NewTable(),
		CountryVariants: NewTable(),
		Countries:       make(map[string]Country, len(raw.CountryMappings)),
		RegionVariants:  NewTable(),
		Regions:         make(map[string]Region, len(raw.RegionMappings)),
		Lookups:         make(map[string]Lookup, len(raw.LookupStrategies)),
		Implicit:        make(map[string]Implicit, len(raw.ImplicitFilters)),
	}

	for _, kind := range sortedKeys(raw.StatusMappings) {
		t := NewTable()
		fillTable(t, raw.StatusMappings[kind])
		c.Status[StatusKind(kind)] = t
	}
	fillTable(c.PlanTypes, raw.PlanTypeMappings)
	fillTable(c.Metrics, raw.MetricMappings)

	for _, key := range sortedKeys(raw.CountryMappings) {
		rc := raw.CountryMappings[key]
		c.Countries[key] = Country{
			Key:       key,
			Canonical: rc.Canonical,
			Code:      rc.Code,
			DBValues:  append([]string(nil), rc.DBValues...),
		}
		c.CountryVariants.Add(key, key)
		c.CountryVariants.Add(rc.Canonical, key)
		c.CountryVariants.Add(rc.Code, key)
		for _, v := range rc.Variants {
			c.CountryVariants.Add(v, key)
		}
	}

	for _, key := range sortedKeys(raw.RegionMappings) {
		rr := raw.RegionMappings[key]
		countries := make([]string, 0, len(rr.Countries))
		for _, ck := range rr.Countries {
			folded := textnorm.Canonical(ck)
			if _, ok := c.Countries[folded]; !ok {
				return nil, perr.Validationf("region %q references unknown country %q", key, ck)
			}
			countries = append(countries, folded)
		}
		c.Regions[key] = Region{Key: key, Name: rr.Name, Countries: countries}
		c.RegionVariants.Add(key, key)
		c.RegionVariants.Add(rr.Name, key)
		for _, v := range rr.Variants {
			c.RegionVariants.Add(v, key)
		}
	}

	var err error
	if c.Dates.Relative, err = compilePatterns("relative", raw.DatePatterns.Relative); err != nil {
		return nil, err
	}
	if c.Dates.Fiscal, err = compilePatterns("fiscal", raw.DatePatterns.Fiscal); err != nil {
		return nil, err
	}
	if c.Dates.Named, err = compilePatterns("named", raw.DatePatterns.Named); err != nil {
		return nil, err
	}

	c.Fuzzy = Fuzzy{
		Enabled:    raw.FuzzyMatching.Enabled,
		Method:     raw.FuzzyMatching.Method,
		Thresholds: raw.FuzzyMatching.Thresholds,
	}

	for kind, rl := range raw.LookupStrategies {
		scanCap := rl.ScanCap
		if scanCap == 0 {
			scanCap = 100
		}
		c.Lookups[kind] = Lookup{
			Kind:         kind,
			PrimaryKey:   rl.PrimaryKey,
			SearchFields: append([]string(nil), rl.SearchFields...),
			FuzzyEnabled: rl.FuzzyEnabled,
			CacheEnabled: rl.CacheEnabled,
			CacheTTL:     time.Duration(rl.CacheTTLSeconds) * time.Second,
			ScanCap:      scanCap,
		}
	}

	for cat, ri := range raw.ImplicitFilters {
		kws := make([]string, 0, len(ri.OverrideKeywords))
		for _, kw := range ri.OverrideKeywords {
			kws = append(kws, textnorm.Canonical(kw))
		}
		c.Implicit[cat] = Implicit{Category: cat, Default: ri.Default, OverrideKeywords: kws}
	}

	return c, nil
}

// fillTable flattens canonical -> variants groups into one table.
// Canonical groups are taken in lexicographic order and each group's
// variants in declared order, so fuzzy tie-breaks are reproducible
func fillTable(t *Table, groups map[string][]string) {
	for _, canonical := range sortedKeys(groups) {
		t.Add(canonical, canonical)
		for _, v := range groups[canonical] {
			t.Add(v, canonical)
		}
	}
}

func compilePatterns(family string, raws []rawDatePattern) ([]DatePattern, error) {
	out := make([]DatePattern, 0, len(raws))
	for i, rp := range raws {
		rx, err := regexp.Compile("(?i)" + rp.Pattern)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeValidation,
				fmt.Sprintf("compile %s pattern %d (%s)", family, i, rp.Type))
		}
		out = append(out, DatePattern{RX: rx, Type: rp.Type, Value: rp.Value})
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
