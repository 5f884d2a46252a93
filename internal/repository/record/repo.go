// Package record checks search hits against the canonical content tables.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/cascade/internal/db"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

// querier is the consumer interface for the record store (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo implements usecase/search.RecordChecker.
type Repo struct {
	db     querier
	tables map[string]string
}

// New creates a record repository. tables maps a content type to its table;
// types without an entry use a table of the same name.
func New(q querier, tables map[string]string) *Repo {
	return &Repo{db: q, tables: tables}
}

// Existing reports, for every id, whether its canonical record still exists.
func (r *Repo) Existing(ctx context.Context, typ string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = false
	}

	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues("record_lookup").Observe(time.Since(start).Seconds())
	}()

	rows, err := r.db.Query(ctx, r.existingSQL(typ), ids)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan %s: %w", typ, err)}
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

func (r *Repo) table(typ string) string {
	if t, ok := r.tables[typ]; ok && t != "" {
		return t
	}
	return typ
}

func (r *Repo) existingSQL(typ string) string {
	return fmt.Sprintf("SELECT id::text FROM %s WHERE id::text = ANY($1)", pgx.Identifier{r.table(typ)}.Sanitize())
}
