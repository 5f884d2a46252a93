// Package search adapts the Elasticsearch document store to the search usecase.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/cascade/internal/db"
	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.DocQuery) (*db.DocResult, error)
	DeleteDoc(ctx context.Context, index, id string) error
}

// Repo implements usecase/search.Backend and usecase/search.Deleter.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// DocID is the document id of an indexed item: "<type>:<id>".
func DocID(typ, id string) string {
	return typ + ":" + id
}

// Execute renders q and runs it against index, restricted to types.
func (r *Repo) Execute(
	ctx context.Context, index string, q *query.Compiled,
	types []string, window result.Window,
) (result.Set, error) {
	res, err := r.store.Search(ctx, &db.DocQuery{
		Index: index,
		Body:  renderBody(q, types, window),
	})
	if err != nil {
		return result.Set{}, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	hits := make([]result.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		typ, id, err := parseHit(h)
		if err != nil {
			return result.Set{}, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
		hits = append(hits, result.New(id, typ, h.Score))
	}
	return result.Set{Total: res.Total, Hits: hits}, nil
}

// Delete removes one item from index. An already missing document is not an error.
func (r *Repo) Delete(ctx context.Context, index, typ, id string) error {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	}()

	err := r.store.DeleteDoc(ctx, index, DocID(typ, id))
	if err != nil && !errors.Is(err, db.ErrDocNotFound) {
		return fmt.Errorf("delete %s: %w", DocID(typ, id), err)
	}
	return nil
}

type hitSource struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id"`
}

// parseHit reads the content type and id from the source, falling back to the
// "<type>:<id>" document id.
func parseHit(h db.DocHit) (typ, id string, err error) {
	var src hitSource
	if len(h.Source) > 0 {
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return "", "", fmt.Errorf("decode hit %s: %w", h.ID, err)
		}
	}
	typ = src.Type
	id = rawID(src.ID)

	if typ == "" || id == "" {
		before, after, ok := strings.Cut(h.ID, ":")
		if !ok {
			return "", "", fmt.Errorf("hit %q has no type", h.ID)
		}
		if typ == "" {
			typ = before
		}
		if id == "" {
			id = after
		}
	}
	return typ, id, nil
}

// rawID accepts both string and numeric ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
