package db

import (
	"context"
	"time"
)

// Store is the key-value facade combining the cache sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// DocStore is the document search backend facade.
type DocStore interface {
	Pinger
	DocSearcher
	IndexAdmin
}

// DocSearcher runs search requests and removes single documents.
type DocSearcher interface {
	Search(ctx context.Context, q *DocQuery) (*DocResult, error)
	DeleteDoc(ctx context.Context, index, id string) error
}

// IndexAdmin provides index lifecycle operations.
type IndexAdmin interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	DeleteIndex(ctx context.Context, name string) error
}
