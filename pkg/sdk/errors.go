package cascade

import (
	"github.com/kailas-cloud/cascade/internal/domain"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound             = domain.ErrNotFound
	ErrBackendUnavailable   = domain.ErrBackendUnavailable
	ErrHierarchyUnavailable = domain.ErrHierarchyUnavailable
	ErrInvalidIndex         = domain.ErrInvalidIndex
	ErrActiveIndex          = indexuc.ErrActiveIndex
)
