package hierarchy

import (
	"context"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
)

// EntityStore looks up entities by id or slug. Unknown terms are simply absent
// from the result.
type EntityStore interface {
	Lookup(ctx context.Context, kind entity.Kind, terms []string) ([]entity.Node, error)
}
