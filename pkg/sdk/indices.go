package cascade

import (
	"context"
	"fmt"
	"time"
)

// IndexService manages the blue/green index pair.
type IndexService struct {
	svc indexUseCase
	obs *observer
}

// Active returns the index searches run against.
func (s *IndexService) Active(ctx context.Context) (name string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_active", start, err) }()

	name, err = s.svc.Active(ctx)
	if err != nil {
		return name, fmt.Errorf("active index: %w", err)
	}
	return name, nil
}

// Inactive returns the standby index.
func (s *IndexService) Inactive(ctx context.Context) (name string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_inactive", start, err) }()

	name, err = s.svc.Inactive(ctx)
	if err != nil {
		return "", fmt.Errorf("inactive index: %w", err)
	}
	return name, nil
}

// Toggle makes the standby index active and returns its name.
func (s *IndexService) Toggle(ctx context.Context) (name string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_toggle", start, err, "active", name) }()

	name, err = s.svc.Toggle(ctx)
	if err != nil {
		return "", fmt.Errorf("toggle index: %w", err)
	}
	return name, nil
}

// Status reports both indices of the pair.
func (s *IndexService) Status(ctx context.Context) (out []IndexStatus, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_status", start, err) }()

	statuses, err := s.svc.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("index status: %w", err)
	}
	out = make([]IndexStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, IndexStatus{Name: st.Name, Active: st.Active, Exists: st.Exists})
	}
	return out, nil
}

// Drop deletes an index of the pair. The active index cannot be dropped.
func (s *IndexService) Drop(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_drop", start, err) }()

	if err = s.svc.Drop(ctx, name); err != nil {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}
