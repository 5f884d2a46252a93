package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/logger"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

// Mapper turns backend hits into a page of live item references.
type Mapper struct {
	records RecordChecker
}

// NewMapper creates a Mapper.
func NewMapper(records RecordChecker) *Mapper {
	return &Mapper{records: records}
}

// Map keeps backend order and total. Hits whose canonical record is gone are
// dropped from the page and returned as stale. A record store failure keeps the
// affected hits rather than treating them as stale.
func (m *Mapper) Map(ctx context.Context, set result.Set, cr *criteria.Criteria) (result.Page, []result.Hit) {
	log := logger.FromContext(ctx)

	byType := make(map[string][]string)
	for i := range set.Hits {
		h := &set.Hits[i]
		byType[h.Type()] = append(byType[h.Type()], h.ID())
	}

	lookups := make([]recordLookup, 0, len(byType))
	for typ, ids := range byType {
		lookups = append(lookups, recordLookup{typ: typ, ids: ids})
	}

	// No shared cancellation: one failing type must not abort the others.
	var g errgroup.Group
	for i := range lookups {
		l := &lookups[i]
		g.Go(func() error {
			l.found, l.err = m.records.Existing(ctx, l.typ, l.ids)
			if l.err != nil {
				return fmt.Errorf("check %s records: %w", l.typ, l.err)
			}
			return nil
		})
	}

	live := make(map[string]bool, len(set.Hits))
	unknown := make(map[string]bool)
	if err := g.Wait(); err != nil {
		var failed []string
		kept := 0
		for _, l := range lookups {
			if l.err != nil {
				unknown[l.typ] = true
				failed = append(failed, l.typ)
				kept += len(l.ids)
			}
		}
		sort.Strings(failed)
		log.Warn("Record lookup failed, keeping hits",
			zap.Strings("types", failed),
			zap.Int("hits", kept),
			zap.Error(err),
		)
	}
	for _, l := range lookups {
		for id, ok := range l.found {
			if ok {
				live[l.typ+":"+id] = true
			}
		}
	}

	seen := make(map[string]struct{}, len(set.Hits))
	items := make([]result.Hit, 0, len(set.Hits))
	var stale []result.Hit
	for i := range set.Hits {
		h := set.Hits[i]
		if _, dup := seen[h.Key()]; dup {
			continue
		}
		seen[h.Key()] = struct{}{}

		if cr.Debug("hit") {
			log.Info("search_debug",
				zap.String("stage", "hit"),
				zap.String("id", h.ID()),
				zap.String("type", h.Type()),
				zap.Float64("score", h.Score()),
			)
		}

		if unknown[h.Type()] || live[h.Key()] {
			items = append(items, h)
			continue
		}
		stale = append(stale, h)
		metrics.StaleHitsTotal.WithLabelValues(h.Type(), "queued").Inc()
	}

	return result.NewPage(set.Total, items, cr.Page(), cr.Limit()), stale
}

type recordLookup struct {
	typ   string
	ids   []string
	found map[string]bool
	err   error
}
