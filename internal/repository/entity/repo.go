// Package entity reads the category, region and tag hierarchies from Postgres.
package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/cascade/internal/db"
	domentity "github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

// querier is the consumer interface for the entity store (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// table describes where one hierarchy lives.
type table struct {
	name        string
	hierarchic  bool
	hasCentroid bool
}

var tables = map[domentity.Kind]table{
	domentity.Category: {name: "categories", hierarchic: true},
	domentity.Region:   {name: "regions", hierarchic: true, hasCentroid: true},
	domentity.Tag:      {name: "tags"},
}

// Repo implements usecase/hierarchy.EntityStore.
type Repo struct {
	db querier
}

// New creates an entity repository.
func New(q querier) *Repo {
	return &Repo{db: q}
}

// Lookup returns the nodes of kind whose id or slug is one of terms. Order is
// unspecified; unknown terms are absent from the result.
func (r *Repo) Lookup(ctx context.Context, kind domentity.Kind, terms []string) ([]domentity.Node, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues("entity_lookup").Observe(time.Since(start).Seconds())
	}()

	rows, err := r.db.Query(ctx, lookupSQL(t), terms)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var nodes []domentity.Node
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(&row.ID, &row.Slug, &row.ParentID, &row.Children, &row.Lat, &row.Lng); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan %s: %w", t.name, err)}
		}
		nodes = append(nodes, row.toNode(kind))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return nodes, nil
}

func lookupSQL(t table) string {
	parent := "NULL::text"
	children := "ARRAY[]::text[]"
	if t.hierarchic {
		parent = "e.parent_id::text"
		children = fmt.Sprintf(
			"ARRAY(SELECT c.id::text FROM %s c WHERE c.parent_id = e.id ORDER BY c.position, c.id)", t.name)
	}
	lat, lng := "NULL::float8", "NULL::float8"
	if t.hasCentroid {
		lat, lng = "e.latitude", "e.longitude"
	}
	return fmt.Sprintf(
		"SELECT e.id::text, e.slug, %s, %s, %s, %s FROM %s e WHERE e.id::text = ANY($1) OR e.slug = ANY($1)",
		parent, children, lat, lng, t.name)
}
