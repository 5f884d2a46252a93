package index

import "context"

// NameStore tracks the active index of the blue/green pair.
type NameStore interface {
	Active(ctx context.Context) (string, error)
	Inactive(ctx context.Context) (string, error)
	Toggle(ctx context.Context) (string, error)
	Validate(name string) error
}

// Admin manages indices on the search backend.
type Admin interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	DeleteIndex(ctx context.Context, name string) error
}
