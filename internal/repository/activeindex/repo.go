// Package activeindex tracks which of the two blue/green search indices serves reads.
package activeindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/cascade/internal/db"
	"github.com/kailas-cloud/cascade/internal/domain"
)

// Key is the key-value entry holding the active index name.
const Key = "elastic-active-index"

// TTL of the stored name; it is refreshed on every toggle.
const TTL = 365 * 24 * time.Hour

const (
	yingSuffix = "_ying"
	yangSuffix = "_yang"
)

// store is the consumer interface for the active index name (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo implements usecase/search.IndexNamer.
type Repo struct {
	store        store
	env          string
	defaultIndex string
}

// New creates the repository. A non-empty defaultIndex pins the active index and
// bypasses the store.
func New(s store, env, defaultIndex string) *Repo {
	return &Repo{store: s, env: env, defaultIndex: defaultIndex}
}

// Ying returns the first index of the pair.
func (r *Repo) Ying() string { return r.env + yingSuffix }

// Yang returns the second index of the pair.
func (r *Repo) Yang() string { return r.env + yangSuffix }

// Validate checks that name belongs to this environment's pair.
func (r *Repo) Validate(name string) error {
	if name != r.Ying() && name != r.Yang() {
		return fmt.Errorf("%w: %q (want %s or %s)", domain.ErrInvalidIndex, name, r.Ying(), r.Yang())
	}
	return nil
}

// Active returns the index searches run against. When nothing is stored yet the
// ying index is stored and returned. On a store failure the ying name is returned
// together with the error.
func (r *Repo) Active(ctx context.Context) (string, error) {
	if r.defaultIndex != "" {
		return r.defaultIndex, nil
	}

	data, err := r.store.Get(ctx, Key)
	switch {
	case err == nil && len(data) > 0:
		return string(data), nil
	case err != nil && !errors.Is(err, db.ErrKeyNotFound):
		return r.Ying(), fmt.Errorf("get active index: %w", err)
	}

	if err := r.store.SetWithTTL(ctx, Key, []byte(r.Ying()), TTL); err != nil {
		return r.Ying(), fmt.Errorf("store active index: %w", err)
	}
	return r.Ying(), nil
}

// Inactive returns the other index of the pair.
func (r *Repo) Inactive(ctx context.Context) (string, error) {
	active, err := r.Active(ctx)
	if err != nil {
		return "", err
	}
	if strings.Contains(active, "yang") {
		return r.Ying(), nil
	}
	return r.Yang(), nil
}

// Toggle makes the inactive index active and returns its name.
func (r *Repo) Toggle(ctx context.Context) (string, error) {
	next, err := r.Inactive(ctx)
	if err != nil {
		return "", err
	}
	if err := r.store.SetWithTTL(ctx, Key, []byte(next), TTL); err != nil {
		return "", fmt.Errorf("store active index: %w", err)
	}
	return next, nil
}
