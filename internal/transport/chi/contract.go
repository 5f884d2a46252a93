package chi

import (
	"context"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
)

// Searcher runs fallback searches.
type Searcher interface {
	Search(ctx context.Context, params criteria.Params) (result.Page, error)
}

// CategoryReader returns a category with its direct children.
type CategoryReader interface {
	Category(ctx context.Context, term string) (entity.Node, []entity.Node, error)
}

// IndexManager manages the blue/green index pair.
type IndexManager interface {
	Status(ctx context.Context) ([]indexuc.Status, error)
	Toggle(ctx context.Context) (string, error)
	Drop(ctx context.Context, name string) error
}

// HealthChecker aggregates store health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
