// Package index administers the blue/green pair of search indices.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/db"
	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/logger"
)

// ErrActiveIndex is returned when dropping the index that currently serves reads.
var ErrActiveIndex = errors.New("index is active")

// Status describes one index of the pair.
type Status struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Exists bool   `json:"exists"`
}

// Service coordinates the active-index pointer with the backend.
type Service struct {
	names NameStore
	admin Admin
}

// New creates an index service.
func New(names NameStore, admin Admin) *Service {
	return &Service{names: names, admin: admin}
}

// Active returns the name searches run against.
func (s *Service) Active(ctx context.Context) (string, error) {
	return s.names.Active(ctx)
}

// Inactive returns the standby index name.
func (s *Service) Inactive(ctx context.Context) (string, error) {
	return s.names.Inactive(ctx)
}

// Toggle swaps the pair. The standby index must exist on the backend.
func (s *Service) Toggle(ctx context.Context) (string, error) {
	next, err := s.names.Inactive(ctx)
	if err != nil {
		return "", err
	}
	exists, err := s.admin.IndexExists(ctx, next)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", next, err)
	}
	if !exists {
		return "", fmt.Errorf("standby index %s: %w", next, domain.ErrNotFound)
	}

	active, err := s.names.Toggle(ctx)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("Active index toggled", zap.String("active", active))
	return active, nil
}

// Status reports both indices of the pair.
func (s *Service) Status(ctx context.Context) ([]Status, error) {
	active, err := s.names.Active(ctx)
	if err != nil {
		return nil, err
	}
	inactive, err := s.names.Inactive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, 2)
	for _, name := range []string{active, inactive} {
		exists, err := s.admin.IndexExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", name, err)
		}
		out = append(out, Status{Name: name, Active: name == active, Exists: exists})
	}
	return out, nil
}

// Drop deletes one index of the pair. The active index cannot be dropped.
func (s *Service) Drop(ctx context.Context, name string) error {
	if err := s.names.Validate(name); err != nil {
		return err
	}
	active, err := s.names.Active(ctx)
	if err != nil {
		return err
	}
	if name == active {
		return fmt.Errorf("drop %s: %w", name, ErrActiveIndex)
	}

	if err := s.admin.DeleteIndex(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("drop %s: %w", name, err)
	}
	logger.FromContext(ctx).Info("Index dropped", zap.String("index", name))
	return nil
}
