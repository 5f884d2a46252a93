package search

import (
	"context"

	"github.com/kailas-cloud/cascade/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, q *db.DocQuery) (*db.DocResult, error)
	deleteDocFn func(ctx context.Context, index, id string) error
}

func (m *mockStore) Search(ctx context.Context, q *db.DocQuery) (*db.DocResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.DocResult{}, nil
}

func (m *mockStore) DeleteDoc(ctx context.Context, index, id string) error {
	if m.deleteDocFn != nil {
		return m.deleteDocFn(ctx, index, id)
	}
	return nil
}
