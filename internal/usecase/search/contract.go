package search

import (
	"context"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/domain/search/strategy"
	"github.com/kailas-cloud/cascade/internal/usecase/hierarchy"
)

// Backend executes compiled queries against the search index.
type Backend interface {
	Execute(
		ctx context.Context, index string, q *query.Compiled,
		types []string, window result.Window,
	) (result.Set, error)
}

// Deleter removes a single entry from the search index.
type Deleter interface {
	Delete(ctx context.Context, index, typ, id string) error
}

// IndexNamer names the index that searches run against. On error the returned
// name is still usable as a fallback.
type IndexNamer interface {
	Active(ctx context.Context) (string, error)
}

// RecordChecker reports which ids of a content type still have a live canonical record.
type RecordChecker interface {
	Existing(ctx context.Context, typ string, ids []string) (map[string]bool, error)
}

// Resolver expands hierarchy terms into id sets.
type Resolver interface {
	Resolve(ctx context.Context, cr *criteria.Criteria) (entity.Resolution, error)
	ResolveCategories(ctx context.Context, terms []string, explicit bool) (hierarchy.Expansion, error)
	ResolveRegions(ctx context.Context, terms []string) (hierarchy.Expansion, error)
}

// Compiler builds a query for one fallback attempt.
type Compiler interface {
	Compile(cr *criteria.Criteria, cfg strategy.Config, res *entity.Resolution) query.Compiled
}

// StaleSink accepts hits whose canonical record no longer exists.
type StaleSink interface {
	Enqueue(index string, hits []result.Hit)
}
