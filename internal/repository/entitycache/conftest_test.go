package entitycache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/db"
	domentity "github.com/kailas-cloud/cascade/internal/domain/entity"
)

type mockLookuper struct {
	nodes []domentity.Node
	err   error
	calls int
}

func (m *mockLookuper) Lookup(_ context.Context, _ domentity.Kind, _ []string) ([]domentity.Node, error) {
	m.calls++
	return m.nodes, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedStore(t *testing.T, inner *mockLookuper) (*CachedStore, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Minute, zap.NewNop()), ms
}
