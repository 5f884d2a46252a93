package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps an existing client, typically a rueidis mock.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// NewCachedStoreForTest wraps a client with client-side caching enabled.
func NewCachedStoreForTest(c rueidis.Client, ttl time.Duration) *Store {
	return &Store{client: c, cacheTTL: ttl}
}
