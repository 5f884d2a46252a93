package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

const defaultDeleteTimeout = 5 * time.Second

// Cleaner removes stale index entries on a bounded worker pool, off the request path.
// Deletion is best-effort: failures are logged and counted, never returned.
type Cleaner struct {
	deleter Deleter
	pool    *ants.Pool
	enabled bool
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewCleaner creates a Cleaner with the given number of workers. When enabled is
// false stale hits are only logged.
func NewCleaner(deleter Deleter, workers int, enabled bool, logger *zap.Logger) (*Cleaner, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create cleaner pool: %w", err)
	}
	return &Cleaner{
		deleter: deleter,
		pool:    pool,
		enabled: enabled,
		timeout: defaultDeleteTimeout,
		logger:  logger,
	}, nil
}

// Enqueue schedules deletion of each hit from index.
func (c *Cleaner) Enqueue(index string, hits []result.Hit) {
	for _, h := range hits {
		if !c.enabled {
			c.logger.Info("Stale index entry kept",
				zap.String("index", index),
				zap.String("type", h.Type()),
				zap.String("id", h.ID()),
			)
			metrics.StaleHitsTotal.WithLabelValues(h.Type(), "kept").Inc()
			continue
		}

		c.wg.Add(1)
		err := c.pool.Submit(func() {
			defer c.wg.Done()
			c.remove(index, h)
		})
		if err != nil {
			c.wg.Done()
			c.logger.Warn("Stale deletion dropped",
				zap.String("index", index),
				zap.String("type", h.Type()),
				zap.String("id", h.ID()),
				zap.Error(err),
			)
			metrics.StaleHitsTotal.WithLabelValues(h.Type(), "dropped").Inc()
		}
	}
}

func (c *Cleaner) remove(index string, h result.Hit) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.deleter.Delete(ctx, index, h.Type(), h.ID()); err != nil {
		c.logger.Warn("Stale deletion failed",
			zap.String("index", index),
			zap.String("type", h.Type()),
			zap.String("id", h.ID()),
			zap.Error(err),
		)
		metrics.StaleHitsTotal.WithLabelValues(h.Type(), "failed").Inc()
		return
	}
	c.logger.Debug("Stale index entry deleted",
		zap.String("index", index),
		zap.String("type", h.Type()),
		zap.String("id", h.ID()),
	)
	metrics.StaleHitsTotal.WithLabelValues(h.Type(), "deleted").Inc()
}

// Wait blocks until every scheduled deletion has finished.
func (c *Cleaner) Wait() {
	c.wg.Wait()
}

// Close waits for pending deletions and releases the worker pool.
func (c *Cleaner) Close() {
	c.wg.Wait()
	c.pool.Release()
}
