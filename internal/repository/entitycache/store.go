// Package entitycache caches entity lookups in a key-value store.
package entitycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/db"
	domentity "github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/geo"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

const cacheKeyPrefix = "cascade:entity:"

// DefaultTTL bounds how long hierarchy edits take to become visible.
const DefaultTTL = 10 * time.Minute

// store is the consumer interface for the entity cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// lookuper is the cached entity source.
type lookuper interface {
	Lookup(ctx context.Context, kind domentity.Kind, terms []string) ([]domentity.Node, error)
}

// CachedStore caches entity lookups. Store failures degrade to the inner lookup.
type CachedStore struct {
	inner  lookuper
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a caching decorator. ttl <= 0 uses DefaultTTL.
func New(inner lookuper, s store, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedStore{
		inner:  inner,
		store:  s,
		ttl:    ttl,
		logger: logger,
	}
}

// Lookup returns cached nodes or calls the inner store. Empty results are cached too.
func (c *CachedStore) Lookup(ctx context.Context, kind domentity.Kind, terms []string) ([]domentity.Node, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	key := cacheKey(kind, terms)

	if nodes, ok := c.getFromCache(ctx, key, kind); ok {
		c.incCache(kind, "hit")
		return nodes, nil
	}
	c.incCache(kind, "miss")

	nodes, err := c.inner.Lookup(ctx, kind, terms)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", kind, err)
	}

	c.putToCache(ctx, key, nodes)
	return nodes, nil
}

func (c *CachedStore) incCache(kind domentity.Kind, result string) {
	metrics.EntityCacheTotal.WithLabelValues(string(kind), result).Inc()
}

// cacheKey is independent of term order and duplicates.
func cacheKey(kind domentity.Kind, terms []string) string {
	sorted := slices.Clone(terms)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	h := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return cacheKeyPrefix + string(kind) + ":" + hex.EncodeToString(h[:])
}

func (c *CachedStore) getFromCache(ctx context.Context, key string, kind domentity.Kind) ([]domentity.Node, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached entities", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var cached []cachedNode
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("Failed to parse cached entities", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	nodes := make([]domentity.Node, 0, len(cached))
	for i := range cached {
		nodes = append(nodes, cached[i].toNode(kind))
	}
	return nodes, true
}

func (c *CachedStore) putToCache(ctx context.Context, key string, nodes []domentity.Node) {
	cached := make([]cachedNode, 0, len(nodes))
	for i := range nodes {
		cached = append(cached, fromNode(&nodes[i]))
	}
	data, err := json.Marshal(cached)
	if err != nil {
		c.logger.Warn("Failed to encode entities", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache entities", zap.String("key", key), zap.Error(err))
	}
}

type cachedNode struct {
	ID       string     `json:"id"`
	Slug     string     `json:"slug"`
	ParentID string     `json:"parent_id,omitempty"`
	Children []string   `json:"children,omitempty"`
	Centroid *geo.Point `json:"centroid,omitempty"`
}

func fromNode(n *domentity.Node) cachedNode {
	cn := cachedNode{
		ID:       n.ID(),
		Slug:     n.Slug(),
		ParentID: n.ParentID(),
		Children: n.Children(),
	}
	if p, ok := n.Centroid(); ok {
		cn.Centroid = &p
	}
	return cn
}

func (cn *cachedNode) toNode(kind domentity.Kind) domentity.Node {
	return domentity.New(kind, cn.ID, cn.Slug, cn.ParentID, cn.Children, cn.Centroid)
}
