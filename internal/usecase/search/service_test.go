package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/logger"
	"github.com/kailas-cloud/cascade/internal/usecase/compiler"
	"github.com/kailas-cloud/cascade/internal/usecase/hierarchy"
)

// --- Mocks ---

type backendCall struct {
	index  string
	q      query.Compiled
	types  []string
	window result.Window
}

type backendReply struct {
	set result.Set
	err error
}

type mockBackend struct {
	mu      sync.Mutex
	replies []backendReply
	facets  map[string]result.Set
	calls   []backendCall
}

func (m *mockBackend) Execute(
	_ context.Context, index string, q *query.Compiled, types []string, w result.Window,
) (result.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(types) == 1 {
		if set, ok := m.facets[types[0]]; ok {
			return set, nil
		}
	}
	m.calls = append(m.calls, backendCall{index: index, q: *q, types: types, window: w})
	if len(m.replies) == 0 {
		return result.Set{}, nil
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r.set, r.err
}

type mockIndices struct {
	name  string
	err   error
	calls int
}

func (m *mockIndices) Active(_ context.Context) (string, error) {
	m.calls++
	return m.name, m.err
}

type mockResolver struct {
	res           entity.Resolution
	err           error
	categoryTerms []string
	regionTerms   []string
}

func (m *mockResolver) Resolve(_ context.Context, _ *criteria.Criteria) (entity.Resolution, error) {
	return m.res, m.err
}

func (m *mockResolver) ResolveCategories(_ context.Context, terms []string, _ bool) (hierarchy.Expansion, error) {
	m.categoryTerms = terms
	return hierarchy.Expansion{IDs: terms, ParentIDs: terms}, nil
}

func (m *mockResolver) ResolveRegions(_ context.Context, terms []string) (hierarchy.Expansion, error) {
	m.regionTerms = terms
	return hierarchy.Expansion{IDs: terms, ParentIDs: terms}, nil
}

type mockRecords struct {
	mu      sync.Mutex
	missing map[string]bool
	err     error
	failing map[string]bool // types whose lookup returns err
}

func (m *mockRecords) Existing(_ context.Context, typ string, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil && (m.failing == nil || m.failing[typ]) {
		return nil, m.err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = !m.missing[typ+":"+id]
	}
	return out, nil
}

type mockSink struct {
	index string
	hits  []result.Hit
}

func (m *mockSink) Enqueue(index string, hits []result.Hit) {
	m.index = index
	m.hits = append(m.hits, hits...)
}

type fixedSeeder struct{}

func (fixedSeeder) Seed(string) uint32 { return 1 }

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	backend  *mockBackend
	indices  *mockIndices
	resolver *mockResolver
	records  *mockRecords
	sink     *mockSink
	svc      *Service
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		backend:  &mockBackend{},
		indices:  &mockIndices{name: "prod_ying"},
		resolver: &mockResolver{},
		records:  &mockRecords{},
		sink:     &mockSink{},
	}
	opts.Defaults = criteria.DefaultSettings()
	opts.Now = func() time.Time { return fixedNow }
	f.svc = New(f.backend, f.indices, f.resolver, compiler.New(fixedSeeder{}), f.records, f.sink, opts)
	return f
}

func hits(ids ...string) []result.Hit {
	out := make([]result.Hit, len(ids))
	for i, id := range ids {
		out[i] = result.New(id, "places", float64(len(ids)-i))
	}
	return out
}

// --- Tests ---

func TestSearch_LandingFallbackRunsThreeAttempts(t *testing.T) {
	f := newFixture(Options{})
	f.resolver.res = entity.Resolution{
		Categories:          []string{"21"},
		ParentCategories:    []string{"2"},
		ParentCategorySlugs: []string{"places-to-stay"},
		Regions:             []string{"101"},
		ParentRegions:       []string{"100"},
	}
	third := result.Set{Total: 3, Hits: hits("a", "b", "c")}
	f.backend.replies = []backendReply{{}, {}, {set: third}}

	page, err := f.svc.Search(context.Background(), criteria.Params{
		"mode":     {"parent"},
		"category": {"camping"},
		"city":     {"bend"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.backend.calls) != 3 {
		t.Fatalf("expected exactly 3 backend calls, got %d", len(f.backend.calls))
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("expected third result unmodified, got total=%d items=%d", page.Total, len(page.Items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if page.Items[i].ID() != want {
			t.Errorf("item %d: got %s, want %s", i, page.Items[i].ID(), want)
		}
	}

	first := f.backend.calls[0].q
	terms, ok := filterTerms(first.Filters(), compiler.FieldCategories)
	if !ok || terms.Values[0] != "2" {
		t.Errorf("first attempt should filter on parent categories, got %+v", first.Filters())
	}
	second := f.backend.calls[1].q
	if regions, ok := filterTerms(second.Filters(), compiler.FieldRegion); !ok || regions.Values[0] != "100" {
		t.Errorf("second attempt should filter on parent regions, got %+v", second.Filters())
	}
	third3 := f.backend.calls[2].q
	if _, ok := filterTerms(third3.Filters(), compiler.FieldRegion); ok {
		t.Error("third attempt must not filter on regions")
	}
}

func filterTerms(clauses []query.Clause, field string) (query.Terms, bool) {
	for _, c := range clauses {
		if t, ok := c.(query.Terms); ok && t.Field == field {
			return t, true
		}
	}
	return query.Terms{}, false
}

func TestSearch_DefaultPlanStopsOnFirstHit(t *testing.T) {
	f := newFixture(Options{})
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("a")}}}

	page, err := f.svc.Search(context.Background(), criteria.Params{"q": {"falls"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.backend.calls) != 1 || page.Total != 1 {
		t.Errorf("calls=%d total=%d", len(f.backend.calls), page.Total)
	}
	if f.backend.calls[0].index != "prod_ying" {
		t.Errorf("expected active index, got %q", f.backend.calls[0].index)
	}
}

func TestSearch_AllEmpty(t *testing.T) {
	f := newFixture(Options{})

	page, err := f.svc.Search(context.Background(), criteria.Params{"q": {"nothing"}, "strict": {"1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
	if len(f.backend.calls) != 1 {
		t.Errorf("strict plan must issue one attempt, got %d", len(f.backend.calls))
	}
	q := f.backend.calls[0].q
	if q.MinScore() != compiler.StrictNeedleScore {
		t.Errorf("strict attempt should raise min score, got %v", q.MinScore())
	}
}

func TestSearch_BackendErrorAborts(t *testing.T) {
	f := newFixture(Options{})
	f.resolver.res = entity.Resolution{ParentCategorySlugs: []string{"places-to-stay"}}
	f.backend.replies = []backendReply{{err: errors.New("connection reset")}, {set: result.Set{Total: 1, Hits: hits("a")}}}

	_, err := f.svc.Search(context.Background(), criteria.Params{"mode": {"parent"}})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var ae *domain.AttemptError
	if !errors.As(err, &ae) || ae.Attempt != 1 {
		t.Errorf("expected attempt 1 error, got %v", err)
	}
	if len(f.backend.calls) != 1 {
		t.Errorf("chain must stop after failure, got %d calls", len(f.backend.calls))
	}
}

func TestSearch_Pagination(t *testing.T) {
	f := newFixture(Options{})
	f.backend.replies = []backendReply{{set: result.Set{Total: 40, Hits: hits("a", "b")}}}

	page, err := f.svc.Search(context.Background(), criteria.Params{"page": {"2"}, "limit": {"12"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := f.backend.calls[0].window
	if w.From != 12 || w.Size != 12 {
		t.Errorf("expected window 12/12, got %+v", w)
	}
	if page.Total != 40 || page.Page != 2 || page.LastPage != 4 || page.From != 13 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestSearch_StaleHitIsExcluded(t *testing.T) {
	f := newFixture(Options{})
	f.records.missing = map[string]bool{"places:gone": true}
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("gone")}}}

	page, err := f.svc.Search(context.Background(), criteria.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected zero items, got %d", len(page.Items))
	}
	if page.Total != 1 {
		t.Errorf("total must stay authoritative, got %d", page.Total)
	}
	if len(f.sink.hits) != 1 || f.sink.hits[0].ID() != "gone" || f.sink.index != "prod_ying" {
		t.Errorf("expected one stale entry, got %+v", f.sink.hits)
	}
}

func TestSearch_IndexOverride(t *testing.T) {
	f := newFixture(Options{})
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("a")}}}

	if _, err := f.svc.Search(context.Background(), criteria.Params{"index": {"prod_yang"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.indices.calls != 0 {
		t.Error("override must not consult the active index")
	}
	if f.backend.calls[0].index != "prod_yang" {
		t.Errorf("got index %q", f.backend.calls[0].index)
	}
}

func TestSearch_ActiveIndexErrorUsesFallback(t *testing.T) {
	f := newFixture(Options{})
	f.indices.err = errors.New("redis down")
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("a")}}}

	if _, err := f.svc.Search(context.Background(), criteria.Params{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.backend.calls[0].index != "prod_ying" {
		t.Errorf("expected fallback index, got %q", f.backend.calls[0].index)
	}
}

func TestSearch_ResolverError(t *testing.T) {
	f := newFixture(Options{})
	f.resolver.err = domain.ErrHierarchyUnavailable

	_, err := f.svc.Search(context.Background(), criteria.Params{"category": {"x"}})
	if !errors.Is(err, domain.ErrHierarchyUnavailable) {
		t.Fatalf("expected ErrHierarchyUnavailable, got %v", err)
	}
	if len(f.backend.calls) != 0 {
		t.Error("backend must not be queried")
	}
}

func TestSearch_InfersFacets(t *testing.T) {
	f := newFixture(Options{InferFacets: true})
	f.backend.facets = map[string]result.Set{
		compiler.CategoryFacetType: {Total: 2, Hits: []result.Hit{
			result.New("c1", "categories", 0.9),
			result.New("c2", "categories", 0.4),
		}},
		compiler.RegionFacetType: {Total: 1, Hits: []result.Hit{
			result.New("r1", "regions", 0.2),
		}},
	}
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("a")}}}

	if _, err := f.svc.Search(context.Background(), criteria.Params{"q": {"hot springs"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.resolver.categoryTerms) != 1 || f.resolver.categoryTerms[0] != "c1" {
		t.Errorf("expected only c1 inferred, got %v", f.resolver.categoryTerms)
	}
	if f.resolver.regionTerms != nil {
		t.Errorf("region below threshold must not be inferred, got %v", f.resolver.regionTerms)
	}

	q := f.backend.calls[0].q
	should, ok := filterTerms(q.Bool().Should, compiler.FieldCategories)
	if !ok || should.Values[0] != "c1" {
		t.Errorf("inferred category must boost, got %+v", q.Bool().Should)
	}
	if _, ok := filterTerms(q.Filters(), compiler.FieldCategories); ok {
		t.Error("inferred category must not filter")
	}
}

func TestSearch_DebugHitLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	f := newFixture(Options{})
	f.backend.replies = []backendReply{{set: result.Set{Total: 2, Hits: hits("a", "b")}}}

	if _, err := f.svc.Search(ctx, criteria.Params{"debug": {"hit"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := logs.FilterMessage("search_debug").FilterField(zap.String("stage", "hit")).All()
	if len(entries) != 2 {
		t.Errorf("expected 2 hit debug lines, got %d", len(entries))
	}
}

func TestSearch_NoDebugNoLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	f := newFixture(Options{})
	f.backend.replies = []backendReply{{set: result.Set{Total: 1, Hits: hits("a")}}}

	if _, err := f.svc.Search(ctx, criteria.Params{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := logs.FilterMessage("search_debug").Len(); n != 0 {
		t.Errorf("expected no debug lines, got %d", n)
	}
}
