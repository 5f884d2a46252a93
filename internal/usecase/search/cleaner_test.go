package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain/search/result"
)

type mockDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (m *mockDeleter) Delete(_ context.Context, index, typ, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, index+"/"+typ+"/"+id)
	return m.err
}

func TestCleaner_DeletesStaleHits(t *testing.T) {
	d := &mockDeleter{}
	c, err := NewCleaner(d, 2, true, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Enqueue("prod_ying", []result.Hit{result.New("1", "events", 1), result.New("2", "places", 1)})
	c.Wait()

	if len(d.deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %v", d.deleted)
	}
	seen := map[string]bool{}
	for _, k := range d.deleted {
		seen[k] = true
	}
	if !seen["prod_ying/events/1"] || !seen["prod_ying/places/2"] {
		t.Errorf("unexpected deletions %v", d.deleted)
	}
}

func TestCleaner_DisabledOnlyLogs(t *testing.T) {
	d := &mockDeleter{}
	c, err := NewCleaner(d, 1, false, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Enqueue("local_ying", []result.Hit{result.New("1", "events", 1)})
	c.Wait()

	if len(d.deleted) != 0 {
		t.Errorf("expected no deletions, got %v", d.deleted)
	}
}

func TestCleaner_DeleteErrorIsSwallowed(t *testing.T) {
	d := &mockDeleter{err: errors.New("not found")}
	c, err := NewCleaner(d, 1, true, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Enqueue("prod_ying", []result.Hit{result.New("1", "events", 1)})
	c.Close()

	if len(d.deleted) != 1 {
		t.Errorf("expected one attempt, got %v", d.deleted)
	}
}
