package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable signals that the search backend could not answer a query.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrHierarchyUnavailable signals that the entity store could not be read.
	ErrHierarchyUnavailable = errors.New("entity hierarchy unavailable")
	// ErrInvalidIndex signals an index name outside the known blue/green pair.
	ErrInvalidIndex = errors.New("invalid index")
)

// AttemptError wraps a backend failure with the fallback attempt that produced it.
type AttemptError struct {
	Attempt int
	Name    string
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d (%s): %s: %v", e.Attempt, e.Name, ErrBackendUnavailable.Error(), e.Err)
}

func (e *AttemptError) Unwrap() []error { return []error{ErrBackendUnavailable, e.Err} }
