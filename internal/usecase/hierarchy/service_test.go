package hierarchy

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/geo"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
)

type mockStore struct {
	mu    sync.Mutex
	nodes map[entity.Kind][]entity.Node
	err   error
	calls int
}

func (m *mockStore) Lookup(_ context.Context, kind entity.Kind, terms []string) ([]entity.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []entity.Node
	for _, n := range m.nodes[kind] {
		for _, t := range terms {
			if n.Matches(t) {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func pt(lat, lng float64) *geo.Point { return &geo.Point{Lat: lat, Lng: lng} }

// Categories: outdoors(1) -> hiking(11), biking(12); lodging(2, places-to-stay) -> camping(21); food(3)
// Regions: central(100) -> bend(101), sisters(102); coast(200)
func newStore() *mockStore {
	return &mockStore{nodes: map[entity.Kind][]entity.Node{
		entity.Category: {
			entity.New(entity.Category, "1", "outdoors", "", []string{"11", "12"}, nil),
			entity.New(entity.Category, "11", "hiking", "1", nil, nil),
			entity.New(entity.Category, "12", "biking", "1", nil, nil),
			entity.New(entity.Category, "2", "places-to-stay", "", []string{"21"}, nil),
			entity.New(entity.Category, "21", "camping", "2", nil, nil),
			entity.New(entity.Category, "3", "food", "", nil, nil),
		},
		entity.Region: {
			entity.New(entity.Region, "100", "central", "", []string{"101", "102"}, pt(44.0, -121.0)),
			entity.New(entity.Region, "101", "bend", "100", nil, pt(44.05, -121.31)),
			entity.New(entity.Region, "102", "sisters", "100", nil, pt(44.29, -121.54)),
			entity.New(entity.Region, "200", "coast", "", nil, pt(45.0, -123.9)),
		},
		entity.Tag: {
			entity.New(entity.Tag, "t1", "family", "", nil, nil),
			entity.New(entity.Tag, "t2", "event", "", nil, nil),
		},
	}}
}

func TestResolveCategories(t *testing.T) {
	tests := []struct {
		name     string
		terms    []string
		explicit bool
		ids      []string
		parents  []string
		slugs    []string
	}{
		{"root expands to children", []string{"outdoors"}, false, []string{"11", "12"}, []string{"1"}, []string{"outdoors"}},
		{"child stays", []string{"hiking"}, false, []string{"11"}, []string{"1"}, []string{"outdoors"}},
		{"childless root stands for itself", []string{"3"}, false, []string{"3"}, []string{"3"}, []string{"food"}},
		{"mixed ids and slugs keep term order", []string{"camping", "1"}, false, []string{"21", "11", "12"}, []string{"2", "1"}, []string{"places-to-stay", "outdoors"}},
		{"duplicates dropped", []string{"hiking", "11", "outdoors"}, false, []string{"11", "12"}, []string{"1"}, []string{"outdoors"}},
		{"explicit re-adds root", []string{"outdoors"}, true, []string{"11", "12", "1"}, []string{"1"}, []string{"outdoors"}},
		{"childless root dropped next to child", []string{"hiking", "food"}, false, []string{"11"}, []string{"1", "3"}, []string{"outdoors", "food"}},
		{"childless roots stand for themselves", []string{"food", "3"}, false, []string{"3"}, []string{"3"}, []string{"food"}},
		{"explicit re-adds childless root", []string{"hiking", "food"}, true, []string{"11", "3"}, []string{"1", "3"}, []string{"outdoors", "food"}},
		{"unknown is empty", []string{"nope"}, false, nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(newStore())
			exp, err := r.ResolveCategories(context.Background(), tt.terms, tt.explicit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(exp.IDs, tt.ids) {
				t.Errorf("ids: got %v, want %v", exp.IDs, tt.ids)
			}
			if !reflect.DeepEqual(exp.ParentIDs, tt.parents) {
				t.Errorf("parents: got %v, want %v", exp.ParentIDs, tt.parents)
			}
			if !reflect.DeepEqual(exp.ParentSlugs, tt.slugs) {
				t.Errorf("slugs: got %v, want %v", exp.ParentSlugs, tt.slugs)
			}
		})
	}
}

func TestResolveRegions(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		ids   []string
	}{
		{"roots expand to cities", []string{"central", "coast"}, []string{"100", "101", "102", "200"}},
		{"city stays", []string{"bend"}, []string{"101"}},
		{"city wins over childless root", []string{"bend", "coast"}, []string{"101"}},
		{"city wins over its own root", []string{"bend", "central"}, []string{"101"}},
		{"unknown is empty", []string{"nope"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(newStore())
			exp, err := r.ResolveRegions(context.Background(), tt.terms)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(exp.IDs, tt.ids) {
				t.Errorf("ids: got %v, want %v", exp.IDs, tt.ids)
			}
		})
	}
}

func TestResolveRegions_CityCentroids(t *testing.T) {
	r := New(newStore())

	city, err := r.ResolveRegions(context.Background(), []string{"bend"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(city.ParentIDs, []string{"100"}) {
		t.Errorf("parents: got %v", city.ParentIDs)
	}
	if _, ok := city.Centroids["101"]; !ok {
		t.Error("expected centroid for matched city")
	}
	if _, ok := city.Centroids["100"]; !ok {
		t.Error("expected centroid for fetched parent")
	}
}

func TestResolveTags(t *testing.T) {
	r := New(newStore())
	tags, err := r.ResolveTags(context.Background(), []string{"event", "t2", "family", "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"t2", "t1"}) {
		t.Errorf("got %v", tags)
	}
}

func TestResolve_AllFacets(t *testing.T) {
	store := newStore()
	r := New(store)
	cr := criteria.Normalize(criteria.Params{
		"category": {"hiking"},
		"city":     {"bend"},
		"tag":      {"family"},
	}, criteria.DefaultSettings(), time.Now())

	res, err := r.Resolve(context.Background(), &cr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Categories, []string{"11"}) ||
		!reflect.DeepEqual(res.Regions, []string{"101"}) ||
		!reflect.DeepEqual(res.Tags, []string{"t1"}) {
		t.Errorf("unexpected resolution %+v", res)
	}
	if !res.HasParentCategorySlug("outdoors") {
		t.Error("expected parent slug outdoors")
	}
	if _, ok := res.Centroid("101"); !ok {
		t.Error("expected centroid")
	}
}

func TestResolve_NoTermsNoLookups(t *testing.T) {
	store := newStore()
	r := New(store)
	cr := criteria.Normalize(criteria.Params{}, criteria.DefaultSettings(), time.Now())

	res, err := r.Resolve(context.Background(), &cr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.calls != 0 {
		t.Errorf("expected no store calls, got %d", store.calls)
	}
	if len(res.Categories)+len(res.Regions)+len(res.Tags) != 0 {
		t.Errorf("expected empty resolution, got %+v", res)
	}
}

func TestResolve_StoreError(t *testing.T) {
	store := newStore()
	store.err = errors.New("connection refused")
	r := New(store)
	cr := criteria.Normalize(criteria.Params{"category": {"hiking"}}, criteria.DefaultSettings(), time.Now())

	_, err := r.Resolve(context.Background(), &cr)
	if !errors.Is(err, domain.ErrHierarchyUnavailable) {
		t.Fatalf("expected ErrHierarchyUnavailable, got %v", err)
	}
}

func TestCategory(t *testing.T) {
	r := New(newStore())

	node, children, err := r.Category(context.Background(), "outdoors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.ID() != "1" || len(children) != 2 {
		t.Errorf("got node %s with %d children", node.ID(), len(children))
	}

	_, _, err = r.Category(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
