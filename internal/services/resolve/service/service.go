// Package service implements the resolution engine: per-category strategy
// cascades, confidence gates, reference lookups with ambiguity surfacing,
// and implicit default filters
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"equilex/internal/core/daterange"
	"equilex/internal/core/match"
	"equilex/internal/core/rulecatalog"
	"equilex/internal/core/similarity"
	"equilex/internal/core/textnorm"
	"equilex/internal/platform/logger"
	"equilex/internal/services/resolve/domain"
)

// Per-category confidence gates applied by the batch orchestrator.
// Lookup categories use the matcher threshold instead of a second gate
const (
	gateStatus = 0.7
	gateTable  = 0.8 // country, plan type, metric
	gateDates  = 0.9
)

// Defaults for unset options
const (
	DefaultLookupTimeout = 3 * time.Second
	DefaultTopN          = 5
)

// Fallback fuzzy thresholds when the rules document omits a category
const (
	defThresholdStatus  = 80
	defThresholdTable   = 85
	defThresholdCompany = 85
	defThresholdPerson  = 90
)

// Options tunes the engine
type Options struct {
	// LookupTimeout bounds each reference-store call
	LookupTimeout time.Duration
	// TopN caps ranked lookup results
	TopN int
	// Now supplies the clock; tests override it
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.LookupTimeout <= 0 {
		o.LookupTimeout = DefaultLookupTimeout
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service is the resolution engine. Stateless per request; the catalog is
// read-only and the cache is the only shared mutable state
type Service struct {
	catalog *rulecatalog.Catalog
	dates   *daterange.Resolver
	ref     domain.ReferencePort
	cache   domain.CachePort
	opt     Options
	log     *logger.Logger
}

// New wires the engine. ref and cache may be nil for table-only use;
// lookups then report no visible candidates
func New(catalog *rulecatalog.Catalog, ref domain.ReferencePort, cache domain.CachePort, opt Options) *Service {
	return &Service{
		catalog: catalog,
		dates:   daterange.New(catalog.Dates),
		ref:     ref,
		cache:   cache,
		opt:     opt.withDefaults(),
		log:     logger.Named("resolve"),
	}
}

// resolveTable runs the exact -> fuzzy cascade over one mapping table
func (s *Service) resolveTable(t *rulecatalog.Table, input, thresholdKey string, defThreshold int) domain.Value {
	if t == nil {
		return domain.NoneValue(input)
	}
	if res, ok := match.Exact(t, input); ok {
		return domain.ScalarValue(input, res.Canonical, domain.MethodExact, 1.0, nil)
	}
	if s.catalog.Fuzzy.Enabled {
		threshold := s.catalog.Fuzzy.Threshold(thresholdKey, defThreshold)
		if res, ok := match.Fuzzy(t, input, threshold, s.catalog.Fuzzy.Method); ok {
			return domain.ScalarValue(input, res.Canonical, domain.MethodFuzzy,
				float64(res.Score)/100,
				domain.Metadata{"matched": res.Matched, "score": res.Score})
		}
	}
	return domain.NoneValue(input)
}

// ResolveStatus resolves a status word against the kind's table
func (s *Service) ResolveStatus(value string, kind rulecatalog.StatusKind) domain.Value {
	return s.resolveTable(s.catalog.Status[kind], value, "status", defThresholdStatus)
}

// ResolvePlanType resolves a plan-type synonym
func (s *Service) ResolvePlanType(value string) domain.Value {
	return s.resolveTable(s.catalog.PlanTypes, value, "plan_type", defThresholdTable)
}

// ResolveMetric resolves a metric synonym
func (s *Service) ResolveMetric(value string) domain.Value {
	return s.resolveTable(s.catalog.Metrics, value, "metric", defThresholdTable)
}

// ResolveCountry resolves a country or region name to the list of stored
// representations the reference data accepts. Region codes expand to
// every member country's representations
func (s *Service) ResolveCountry(value string) domain.Value {
	if key, ok := s.catalog.CountryVariants.Lookup(value); ok {
		c := s.catalog.Countries[key]
		return domain.ListValue(value, append([]string(nil), c.DBValues...),
			domain.MethodExact, 1.0, domain.Metadata{"canonical": c.Canonical})
	}
	if rkey, ok := s.catalog.RegionVariants.Lookup(value); ok {
		r := s.catalog.Regions[rkey]
		return domain.ListValue(value, s.regionDBValues(r),
			domain.MethodExact, 1.0, domain.Metadata{"canonical": r.Name, "region": r.Key})
	}
	if s.catalog.Fuzzy.Enabled {
		threshold := s.catalog.Fuzzy.Threshold("country", defThresholdTable)
		if res, ok := match.Fuzzy(s.catalog.CountryVariants, value, threshold, s.catalog.Fuzzy.Method); ok {
			c := s.catalog.Countries[res.Canonical]
			return domain.ListValue(value, append([]string(nil), c.DBValues...),
				domain.MethodFuzzy, float64(res.Score)/100,
				domain.Metadata{"matched": res.Matched, "score": res.Score, "canonical": c.Canonical})
		}
	}
	return domain.NoneValue(value)
}

func (s *Service) regionDBValues(r rulecatalog.Region) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ck := range r.Countries {
		for _, v := range s.catalog.Countries[ck].DBValues {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// ResolveDateExpression converts a date phrase to an inclusive range
// anchored at now. Pattern hits are deterministic, confidence 1.0
func (s *Service) ResolveDateExpression(phrase string, now time.Time) domain.Value {
	m, ok := s.dates.Resolve(phrase, now)
	if !ok {
		return domain.NoneRange(phrase)
	}
	return domain.RangeValue(phrase, m.Range, 1.0,
		domain.Metadata{"family": m.Family, "pattern_type": m.Type})
}

// ResolveOrganization resolves a company name within the caller's scope.
// One element means an unambiguous hit; more means clarification needed
func (s *Service) ResolveOrganization(ctx context.Context, name string, sc domain.Scope) ([]domain.Value, error) {
	return s.lookup(ctx, "client", "company_name", defThresholdCompany, name, sc.ClientIDs, sc)
}

// ResolvePerson resolves a person name within the caller's scope, ranked
// by descending confidence and capped to the configured top N
func (s *Service) ResolvePerson(ctx context.Context, name string, sc domain.Scope) ([]domain.Value, error) {
	return s.lookup(ctx, "participant", "person_name", defThresholdPerson, name, sc.ParticipantIDs, sc)
}

// lookup runs the substring-then-fuzzy cascade against the reference
// store. Scope is enforced in the store query itself; only unambiguous
// successes are cached, failures and multi-match sets never are
func (s *Service) lookup(
	ctx context.Context, kindName, thresholdKey string, defThreshold int,
	query string, visibleIDs []string, sc domain.Scope,
) ([]domain.Value, error) {
	strategy, ok := s.catalog.Lookups[kindName]
	if !ok || s.ref == nil {
		return nil, nil
	}

	// The store sees the raw trimmed name so accented rows still match;
	// the folded form keys the cache and scores equality
	trimmed := textnorm.CollapseSpace(query)
	folded := textnorm.Canonical(query)
	if folded == "" || len(visibleIDs) == 0 {
		return nil, nil
	}
	fp := sc.Fingerprint()

	if strategy.CacheEnabled && s.cache != nil {
		if vals, ok := s.cache.Get(kindName, folded, fp); ok {
			return vals, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opt.LookupTimeout)
	defer cancel()

	recs, err := s.ref.Search(ctx, strategy, trimmed, visibleIDs, s.opt.TopN)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kindName).Str("scope", fp).Msg("reference lookup failed")
		return nil, err
	}
	var vals []domain.Value
	if len(recs) > 0 {
		vals = s.rankSubstring(strategy, recs, query, folded)
	} else if strategy.FuzzyEnabled && s.catalog.Fuzzy.Enabled {
		vals, err = s.fuzzyLookup(ctx, strategy, thresholdKey, defThreshold, query, folded, visibleIDs)
		if err != nil {
			s.log.Warn().Err(err).Str("kind", kindName).Str("scope", fp).Msg("reference lookup failed")
			return nil, err
		}
	}

	if len(vals) == 1 && strategy.CacheEnabled && s.cache != nil {
		s.cache.Put(kindName, folded, fp, vals, strategy.CacheTTL)
	}
	return vals, nil
}

// rankSubstring turns substring hits into ranked values. A field that
// folds to the exact query scores 1.0, a partial containment 0.9; more
// than one element means the name is genuinely ambiguous
func (s *Service) rankSubstring(
	strategy rulecatalog.Lookup, recs []domain.Record, query, folded string,
) []domain.Value {
	vals := make([]domain.Value, 0, len(recs))
	for _, rec := range recs {
		conf := 0.9
		for _, f := range strategy.SearchFields {
			if v := rec.Fields[f]; v != "" && textnorm.Canonical(v) == folded {
				conf = 1.0
				break
			}
		}
		vals = append(vals, domain.ScalarValue(query, rec.ID, domain.MethodLookupExact, conf,
			domain.Metadata{"display": rec.Display(strategy.SearchFields)}))
	}
	sort.SliceStable(vals, func(i, j int) bool { return vals[i].Confidence > vals[j].Confidence })
	return vals
}

func (s *Service) fuzzyLookup(
	ctx context.Context, strategy rulecatalog.Lookup, thresholdKey string, defThreshold int,
	query, folded string, visibleIDs []string,
) ([]domain.Value, error) {
	recs, err := s.ref.ListAll(ctx, strategy, visibleIDs)
	if err != nil {
		return nil, err
	}
	threshold := s.catalog.Fuzzy.Threshold(thresholdKey, defThreshold)

	score := similarity.TokenSortRatio
	if s.catalog.Fuzzy.Method == "ratio" {
		score = similarity.Ratio
	}

	var vals []domain.Value
	for _, rec := range recs {
		best, field := 0, ""
		for _, f := range strategy.SearchFields {
			v := rec.Fields[f]
			if v == "" {
				continue
			}
			if sc := score(folded, textnorm.Canonical(v)); sc > best {
				best, field = sc, f
			}
		}
		if best < threshold {
			continue
		}
		vals = append(vals, domain.ScalarValue(query, rec.ID, domain.MethodLookupFuzzy,
			float64(best)/100,
			domain.Metadata{"display": rec.Display(strategy.SearchFields), "score": best, "field": field}))
	}

	sort.SliceStable(vals, func(i, j int) bool { return vals[i].Confidence > vals[j].Confidence })
	if len(vals) > s.opt.TopN {
		vals = vals[:s.opt.TopN]
	}
	return vals, nil
}

// Resolve is the batch entry point: every populated category resolves
// concurrently, gates apply per category, ambiguous lookups become
// clarification requests, and implicit defaults run once after the fan-in
func (s *Service) Resolve(ctx context.Context, bundle domain.Bundle, sc domain.Scope) (*domain.FilterSet, error) {
	fs := domain.NewFilterSet()
	now := s.opt.Now()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		lookupErr error
	)
	add := func(name string, v domain.Value) {
		mu.Lock()
		fs.Add(name, v)
		mu.Unlock()
	}
	fail := func(err error) {
		mu.Lock()
		if lookupErr == nil {
			lookupErr = err
		}
		mu.Unlock()
	}
	clarify := func(c domain.Clarification) {
		mu.Lock()
		fs.NeedsClarification = true
		fs.Clarifications = append(fs.Clarifications, c)
		mu.Unlock()
	}

	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		for kind, inputs := range bundle.Statuses {
			for _, in := range inputs {
				if v := s.ResolveStatus(in, kind); v.Resolved() && v.Confidence >= gateStatus {
					add(string(kind), v)
				}
			}
		}
	})
	run(func() {
		for _, in := range bundle.PlanTypes {
			if v := s.ResolvePlanType(in); v.Resolved() && v.Confidence >= gateTable {
				add("plan_type", v)
			}
		}
	})
	run(func() {
		for _, in := range bundle.Countries {
			if v := s.ResolveCountry(in); v.Resolved() && v.Confidence >= gateTable {
				add("country", v)
			}
		}
	})
	run(func() {
		for _, in := range bundle.Metrics {
			if v := s.ResolveMetric(in); v.Resolved() && v.Confidence >= gateTable {
				add("metric", v)
			}
		}
	})
	run(func() {
		for _, in := range bundle.Dates {
			if v := s.ResolveDateExpression(in, now); v.Resolved() && v.Confidence >= gateDates {
				add("date_range", v)
			}
		}
	})
	run(func() {
		for _, in := range bundle.Companies {
			vals, err := s.ResolveOrganization(ctx, in, sc)
			if err != nil {
				fail(err)
				return
			}
			switch {
			case len(vals) == 1:
				add("client", vals[0])
			case len(vals) > 1:
				clarify(domain.Clarification{Category: "client", Query: in, Options: vals})
			}
		}
	})
	run(func() {
		for _, in := range bundle.People {
			vals, err := s.ResolvePerson(ctx, in, sc)
			if err != nil {
				fail(err)
				return
			}
			switch {
			case len(vals) == 1:
				add("participant", vals[0])
			case len(vals) > 1:
				clarify(domain.Clarification{Category: "participant", Query: in, Options: vals})
			}
		}
	})

	wg.Wait()
	if lookupErr != nil {
		return nil, lookupErr
	}

	s.applyImplicitDefaults(bundle, fs)
	return fs, nil
}

// applyImplicitDefaults injects category defaults after explicit
// resolution, unless an override keyword appears anywhere in the bundle.
// Explicitly resolved values are never overridden
func (s *Service) applyImplicitDefaults(bundle domain.Bundle, fs *domain.FilterSet) {
	flat := textnorm.Canonical(bundle.FlatText())

	for _, cat := range sortedImplicitCategories(s.catalog.Implicit) {
		imp := s.catalog.Implicit[cat]
		if fs.Has(cat) {
			continue
		}
		if containsAny(flat, imp.OverrideKeywords) {
			continue
		}
		fs.Add(cat, domain.ScalarValue("", imp.Default, domain.MethodExact, 1.0,
			domain.Metadata{"implicit": true}))
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && textnorm.ContainsToken(text, kw) {
			return true
		}
	}
	return false
}

func sortedImplicitCategories(m map[string]rulecatalog.Implicit) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
