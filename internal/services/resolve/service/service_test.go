package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"equilex/internal/core/rulecatalog"
	perr "equilex/internal/platform/errors"
	"equilex/internal/services/resolve/cache"
	"equilex/internal/services/resolve/domain"
)

// stubRef is an in-memory reference store honoring visible-id scoping the
// same way the SQL repo does. Substring matching is case-insensitive but
// accent-sensitive, like ILIKE
type stubRef struct {
	mu          sync.Mutex
	records     map[string][]domain.Record
	err         error
	searchCalls int
	listCalls   int
}

func (s *stubRef) Search(ctx context.Context, kind rulecatalog.Lookup, query string, visibleIDs []string, limit int) ([]domain.Record, error) {
	s.mu.Lock()
	s.searchCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, perr.LookupWrap(err, "search %s", kind.Kind)
	}
	q := strings.ToLower(query)
	var out []domain.Record
	for _, rec := range s.records[kind.Kind] {
		if !contains(visibleIDs, rec.ID) {
			continue
		}
		for _, f := range kind.SearchFields {
			if v := rec.Fields[f]; v != "" && strings.Contains(strings.ToLower(v), q) {
				out = append(out, rec)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubRef) ListAll(ctx context.Context, kind rulecatalog.Lookup, visibleIDs []string) ([]domain.Record, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Record
	for _, rec := range s.records[kind.Kind] {
		if contains(visibleIDs, rec.ID) {
			out = append(out, rec)
		}
		if len(out) >= kind.ScanCap {
			break
		}
	}
	return out, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func client(id, name string) domain.Record {
	return domain.Record{ID: id, Fields: map[string]string{"name": name}}
}

func participant(id, name string) domain.Record {
	return domain.Record{ID: id, Fields: map[string]string{"name": name, "email": "", "employee_ref": ""}}
}

func newService(t *testing.T, ref domain.ReferencePort) *Service {
	t.Helper()
	cat, err := rulecatalog.LoadDefault()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	c, err := cache.New(64)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return New(cat, ref, c, Options{
		Now: func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) },
	})
}

func TestResolveStatusExactPrecedence(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveStatus("EMPLOYED", rulecatalog.ParticipantStatus)
	if v.Method != domain.MethodExact || v.Confidence != 1.0 || v.Scalar != "active" {
		t.Fatalf("v = %+v", v)
	}
}

func TestResolveStatusFuzzyTypo(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveStatus("terminatd", rulecatalog.ParticipantStatus)
	if v.Method != domain.MethodFuzzy || v.Scalar != "terminated" {
		t.Fatalf("v = %+v", v)
	}
	if v.Confidence < 0.8 || v.Confidence >= 1.0 {
		t.Fatalf("confidence = %v", v.Confidence)
	}
}

func TestResolveStatusNone(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveStatus("xyzzy", rulecatalog.ParticipantStatus)
	if v.Method != domain.MethodNone || v.Confidence != 0 {
		t.Fatalf("v = %+v", v)
	}
	if v.Scalar != "xyzzy" {
		t.Fatalf("none must echo the input, got %q", v.Scalar)
	}
}

func TestResolvePlanType(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolvePlanType("restricted stock units")
	if v.Method != domain.MethodExact || v.Scalar != "RSU" {
		t.Fatalf("v = %+v", v)
	}
}

func TestResolveMetric(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveMetric("headcount")
	if v.Scalar != "participant_count" || v.Method != domain.MethodExact {
		t.Fatalf("v = %+v", v)
	}
}

func TestResolveCountryExpansion(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveCountry("UK")
	if v.Method != domain.MethodExact || v.Confidence != 1.0 {
		t.Fatalf("v = %+v", v)
	}
	want := []string{"United Kingdom", "UK", "GB"}
	if len(v.List) != len(want) {
		t.Fatalf("list = %v", v.List)
	}
	for i := range want {
		if v.List[i] != want[i] {
			t.Fatalf("list = %v, want %v", v.List, want)
		}
	}
}

func TestResolveCountryRegion(t *testing.T) {
	s := newService(t, nil)
	v := s.ResolveCountry("EMEA")
	if v.Method != domain.MethodExact {
		t.Fatalf("v = %+v", v)
	}
	found := map[string]bool{}
	for _, x := range v.List {
		found[x] = true
	}
	for _, want := range []string{"United Kingdom", "Germany", "France", "South Africa"} {
		if !found[want] {
			t.Fatalf("region expansion missing %q: %v", want, v.List)
		}
	}
}

func TestResolveDateExpression(t *testing.T) {
	s := newService(t, nil)
	now := time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC)
	v := s.ResolveDateExpression("next 30 days", now)
	if v.Method != domain.MethodPattern || v.Range == nil {
		t.Fatalf("v = %+v", v)
	}
	if got := v.Range.End.Format("2006-01-02"); got != "2025-10-30" {
		t.Fatalf("end = %s", got)
	}

	v = s.ResolveDateExpression("sometime soon maybe", now)
	if v.Method != domain.MethodNone || v.Range != nil {
		t.Fatalf("v = %+v", v)
	}
}

func TestOrganizationExactThenCache(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corp"), client("c-2", "Globex")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1", "c-2"}}

	vals, err := s.ResolveOrganization(context.Background(), "Acme Corp", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 1 || vals[0].Scalar != "c-1" || vals[0].Method != domain.MethodLookupExact {
		t.Fatalf("vals = %+v", vals)
	}

	again, err := s.ResolveOrganization(context.Background(), "Acme Corp", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0].Scalar != vals[0].Scalar || again[0].Confidence != vals[0].Confidence {
		t.Fatalf("second call differs: %+v", again)
	}
	if ref.searchCalls != 1 {
		t.Fatalf("searchCalls = %d, second call must come from cache", ref.searchCalls)
	}
}

func TestOrganizationFuzzyFallback(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corporation"), client("c-2", "Globex")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1", "c-2"}}

	vals, err := s.ResolveOrganization(context.Background(), "acme corporaton", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 1 || vals[0].Scalar != "c-1" || vals[0].Method != domain.MethodLookupFuzzy {
		t.Fatalf("vals = %+v", vals)
	}
	if vals[0].Confidence < 0.85 {
		t.Fatalf("confidence = %v", vals[0].Confidence)
	}
}

func TestScopeIsolationUnderFuzzy(t *testing.T) {
	// the best fuzzy match exists but sits outside the caller's scope
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corporation"), client("c-2", "Globex")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-2"}}

	vals, err := s.ResolveOrganization(context.Background(), "acme corporation", sc)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vals {
		if v.Scalar == "c-1" {
			t.Fatal("out-of-scope record returned")
		}
	}
	if len(vals) != 0 {
		t.Fatalf("vals = %+v", vals)
	}
}

func TestEmptyScopeSkipsStore(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{"client": {client("c-1", "Acme")}}}
	s := newService(t, ref)

	vals, err := s.ResolveOrganization(context.Background(), "Acme", domain.Scope{})
	if err != nil || vals != nil {
		t.Fatalf("vals = %+v, err = %v", vals, err)
	}
	if ref.searchCalls != 0 {
		t.Fatal("store must not be consulted without grants")
	}
}

func TestPersonAmbiguity(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {
			participant("p-1", "Jordan Smith"),
			participant("p-2", "Jordan Smithe"),
			participant("p-3", "Casey Wu"),
		},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1", "p-2", "p-3"}}

	vals, err := s.ResolvePerson(context.Background(), "jordan smiths", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 {
		t.Fatalf("want 2 ranked matches, got %+v", vals)
	}
	if vals[0].Confidence < vals[1].Confidence {
		t.Fatal("results must rank by descending confidence")
	}
	for _, v := range vals {
		if v.Method != domain.MethodLookupFuzzy {
			t.Fatalf("method = %s", v.Method)
		}
	}
}

func TestPersonExactDuplicatesStayAmbiguous(t *testing.T) {
	// two visible participants with the same stored name must both
	// surface, never a single confident pick
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {
			participant("p-1", "Jordan Smith"),
			participant("p-2", "Jordan Smith"),
		},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1", "p-2"}}

	vals, err := s.ResolvePerson(context.Background(), "Jordan Smith", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 {
		t.Fatalf("want both duplicates, got %+v", vals)
	}
	for _, v := range vals {
		if v.Method != domain.MethodLookupExact || v.Confidence != 1.0 {
			t.Fatalf("v = %+v", v)
		}
	}

	fs, err := s.Resolve(context.Background(), domain.Bundle{People: []string{"Jordan Smith"}}, sc)
	if err != nil {
		t.Fatal(err)
	}
	if !fs.NeedsClarification || fs.Has("participant") {
		t.Fatalf("duplicate names must become a clarification: %+v", fs)
	}
}

func TestPersonSubstringMatch(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {
			participant("p-1", "Jordan Smith"),
			participant("p-2", "Casey Wu"),
		},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1", "p-2"}}

	vals, err := s.ResolvePerson(context.Background(), "Jordan", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 1 || vals[0].Scalar != "p-1" {
		t.Fatalf("vals = %+v", vals)
	}
	if vals[0].Method != domain.MethodLookupExact || vals[0].Confidence != 0.9 {
		t.Fatalf("partial containment scores 0.9, got %+v", vals[0])
	}
}

func TestSubstringRanksExactNameFirst(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corporation"), client("c-2", "Acme")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1", "c-2"}}

	vals, err := s.ResolveOrganization(context.Background(), "acme", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 {
		t.Fatalf("vals = %+v", vals)
	}
	if vals[0].Scalar != "c-2" || vals[0].Confidence != 1.0 {
		t.Fatalf("exact name must rank first: %+v", vals)
	}
	if vals[1].Confidence != 0.9 {
		t.Fatalf("vals = %+v", vals)
	}
}

func TestAccentedNameMatchesExactly(t *testing.T) {
	// the store receives the raw trimmed name, so the accented row
	// matches at full confidence instead of falling through to fuzzy
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {participant("p-1", "José García")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1"}}

	vals, err := s.ResolvePerson(context.Background(), "  José   García ", sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 1 || vals[0].Method != domain.MethodLookupExact || vals[0].Confidence != 1.0 {
		t.Fatalf("vals = %+v", vals)
	}
}

func TestAmbiguousLookupNotCached(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {
			participant("p-1", "Jordan Smith"),
			participant("p-2", "Jordan Smith"),
		},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1", "p-2"}}

	for i := 0; i < 2; i++ {
		vals, err := s.ResolvePerson(context.Background(), "Jordan Smith", sc)
		if err != nil {
			t.Fatal(err)
		}
		if len(vals) != 2 {
			t.Fatalf("vals = %+v", vals)
		}
	}
	if ref.searchCalls != 2 {
		t.Fatalf("searchCalls = %d, ambiguous sets must be recomputed", ref.searchCalls)
	}
}

func TestLookupFailurePropagates(t *testing.T) {
	ref := &stubRef{err: perr.Lookupf("reference store unreachable")}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1"}}

	_, err := s.ResolveOrganization(context.Background(), "Acme", sc)
	if err == nil {
		t.Fatal("expected error")
	}
	if !perr.IsLookupFailure(err) {
		t.Fatalf("code = %v, lookup failure must stay distinct from no match", perr.CodeOf(err))
	}
}

func TestBatchResolve(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corp")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1"}}

	bundle := domain.Bundle{
		Statuses:  map[rulecatalog.StatusKind][]string{rulecatalog.ParticipantStatus: {"terminated"}},
		PlanTypes: []string{"rsus"},
		Countries: []string{"uk"},
		Dates:     []string{"Q1 2025"},
		Metrics:   []string{"headcount"},
		Companies: []string{"Acme Corp"},
	}

	fs, err := s.Resolve(context.Background(), bundle, sc)
	if err != nil {
		t.Fatal(err)
	}
	if fs.NeedsClarification {
		t.Fatalf("unexpected clarification: %+v", fs.Clarifications)
	}

	if got := fs.Filters["participant_status"]; len(got) != 1 || got[0].Scalar != "terminated" {
		t.Fatalf("participant_status = %+v", got)
	}
	if got := fs.Filters["plan_type"]; len(got) != 1 || got[0].Scalar != "RSU" {
		t.Fatalf("plan_type = %+v", got)
	}
	if got := fs.Filters["country"]; len(got) != 1 || len(got[0].List) != 3 {
		t.Fatalf("country = %+v", got)
	}
	if got := fs.Filters["date_range"]; len(got) != 1 || got[0].Range == nil ||
		got[0].Range.Start.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("date_range = %+v", got)
	}
	if got := fs.Filters["metric"]; len(got) != 1 || got[0].Scalar != "participant_count" {
		t.Fatalf("metric = %+v", got)
	}
	if got := fs.Filters["client"]; len(got) != 1 || got[0].Scalar != "c-1" {
		t.Fatalf("client = %+v", got)
	}
}

func TestBatchAmbiguityClarification(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"participant": {participant("p-1", "Jordan Smith"), participant("p-2", "Jordan Smithe")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ParticipantIDs: []string{"p-1", "p-2"}}

	fs, err := s.Resolve(context.Background(), domain.Bundle{People: []string{"jordan smiths"}}, sc)
	if err != nil {
		t.Fatal(err)
	}
	if !fs.NeedsClarification || len(fs.Clarifications) != 1 {
		t.Fatalf("fs = %+v", fs)
	}
	cl := fs.Clarifications[0]
	if cl.Category != "participant" || len(cl.Options) != 2 {
		t.Fatalf("clarification = %+v", cl)
	}
	if fs.Has("participant") {
		t.Fatal("ambiguous lookup must not silently pick a value")
	}
}

func TestImplicitDefaultInjected(t *testing.T) {
	s := newService(t, nil)
	fs, err := s.Resolve(context.Background(), domain.Bundle{PlanTypes: []string{"rsu"}}, domain.Scope{})
	if err != nil {
		t.Fatal(err)
	}
	got := fs.Filters["participant_status"]
	if len(got) != 1 || got[0].Scalar != "active" {
		t.Fatalf("participant_status = %+v", got)
	}
	if imp, _ := got[0].Metadata["implicit"].(bool); !imp {
		t.Fatalf("metadata = %+v", got[0].Metadata)
	}
	if vs := fs.Filters["vesting_status"]; len(vs) != 1 || vs[0].Scalar != "pending" {
		t.Fatalf("vesting_status = %+v", vs)
	}
}

func TestImplicitDefaultSuppressedByOverride(t *testing.T) {
	s := newService(t, nil)
	fs, err := s.Resolve(context.Background(),
		domain.Bundle{PlanTypes: []string{"rsu"}, Metrics: []string{"all participants headcount"}},
		domain.Scope{})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Has("participant_status") {
		t.Fatalf("default injected despite override keyword: %+v", fs.Filters["participant_status"])
	}
}

func TestImplicitDefaultNeverOverridesExplicit(t *testing.T) {
	s := newService(t, nil)
	bundle := domain.Bundle{
		Statuses: map[rulecatalog.StatusKind][]string{rulecatalog.ParticipantStatus: {"terminated"}},
	}
	fs, err := s.Resolve(context.Background(), bundle, domain.Scope{})
	if err != nil {
		t.Fatal(err)
	}
	got := fs.Filters["participant_status"]
	if len(got) != 1 || got[0].Scalar != "terminated" {
		t.Fatalf("explicit value overridden: %+v", got)
	}
}

func TestBatchLookupFailureFailsBatch(t *testing.T) {
	ref := &stubRef{err: perr.Lookupf("store down")}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1"}}

	_, err := s.Resolve(context.Background(),
		domain.Bundle{Companies: []string{"Acme"}, PlanTypes: []string{"rsu"}}, sc)
	if err == nil || !perr.IsLookupFailure(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestBatchConcurrentCalls(t *testing.T) {
	ref := &stubRef{records: map[string][]domain.Record{
		"client": {client("c-1", "Acme Corp")},
	}}
	s := newService(t, ref)
	sc := domain.Scope{ClientIDs: []string{"c-1"}}
	bundle := domain.Bundle{
		PlanTypes: []string{"rsu"},
		Countries: []string{"uk"},
		Companies: []string{"Acme Corp"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs, err := s.Resolve(context.Background(), bundle, sc)
			if err != nil {
				t.Error(err)
				return
			}
			if !fs.Has("client") || !fs.Has("plan_type") {
				t.Errorf("fs = %+v", fs.Filters)
			}
		}()
	}
	wg.Wait()
}
