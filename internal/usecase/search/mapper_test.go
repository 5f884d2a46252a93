package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/logger"
)

func mapCriteria(p criteria.Params) *criteria.Criteria {
	cr := criteria.Normalize(p, criteria.DefaultSettings(), fixedNow)
	return &cr
}

func TestMapper_PreservesBackendOrder(t *testing.T) {
	m := NewMapper(&mockRecords{missing: map[string]bool{"events:2": true}})
	set := result.Set{Total: 10, Hits: []result.Hit{
		result.New("9", "places", 1),
		result.New("2", "events", 5),
		result.New("4", "events", 3),
		result.New("1", "places", 9),
	}}

	page, stale := m.Map(context.Background(), set, mapCriteria(criteria.Params{}))

	want := []string{"places:9", "events:4", "places:1"}
	if len(page.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(page.Items))
	}
	for i, h := range page.Items {
		if h.Key() != want[i] {
			t.Errorf("item %d: got %s, want %s", i, h.Key(), want[i])
		}
	}
	if len(stale) != 1 || stale[0].Key() != "events:2" {
		t.Errorf("unexpected stale %v", stale)
	}
	if page.Total != 10 {
		t.Errorf("total must come from the backend, got %d", page.Total)
	}
}

func TestMapper_DropsDuplicates(t *testing.T) {
	m := NewMapper(&mockRecords{})
	set := result.Set{Total: 3, Hits: []result.Hit{
		result.New("1", "places", 3),
		result.New("1", "places", 2),
		result.New("1", "events", 1),
	}}

	page, _ := m.Map(context.Background(), set, mapCriteria(criteria.Params{}))
	if len(page.Items) != 2 {
		t.Errorf("expected 2 unique items, got %d", len(page.Items))
	}
}

func TestMapper_RecordErrorKeepsHits(t *testing.T) {
	m := NewMapper(&mockRecords{err: errors.New("db timeout")})
	set := result.Set{Total: 2, Hits: hits("a", "b")}

	page, stale := m.Map(context.Background(), set, mapCriteria(criteria.Params{}))
	if len(page.Items) != 2 || len(stale) != 0 {
		t.Errorf("items=%d stale=%d", len(page.Items), len(stale))
	}
}

func TestMapper_OneTypeFailingKeepsOthersChecked(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	dbErr := errors.New("db timeout")
	m := NewMapper(&mockRecords{
		err:     dbErr,
		failing: map[string]bool{"events": true},
		missing: map[string]bool{"places:2": true},
	})
	set := result.Set{Total: 4, Hits: []result.Hit{
		result.New("1", "places", 4),
		result.New("7", "events", 3),
		result.New("2", "places", 2),
		result.New("8", "events", 1),
	}}

	page, stale := m.Map(ctx, set, mapCriteria(criteria.Params{}))

	want := []string{"places:1", "events:7", "events:8"}
	if len(page.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(page.Items))
	}
	for i, h := range page.Items {
		if h.Key() != want[i] {
			t.Errorf("item %d: got %s, want %s", i, h.Key(), want[i])
		}
	}
	if len(stale) != 1 || stale[0].Key() != "places:2" {
		t.Errorf("unexpected stale %v", stale)
	}

	entries := logs.FilterMessage("Record lookup failed, keeping hits").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["hits"] != int64(2) {
		t.Errorf("hits field = %v", fields["hits"])
	}
	if types, ok := fields["types"].([]interface{}); !ok || len(types) != 1 || types[0] != "events" {
		t.Errorf("types field = %v", fields["types"])
	}
	if msg, _ := fields["error"].(string); !strings.Contains(msg, "events") || !strings.Contains(msg, "db timeout") {
		t.Errorf("error field = %q", msg)
	}
}

func TestMapper_EmptySet(t *testing.T) {
	m := NewMapper(&mockRecords{})
	page, stale := m.Map(context.Background(), result.Set{}, mapCriteria(criteria.Params{"page": {"3"}}))
	if page.Total != 0 || len(page.Items) != 0 || stale != nil || page.Page != 3 {
		t.Errorf("unexpected page %+v", page)
	}
}
