package cascade

import (
	"context"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, params criteria.Params) (result.Page, error)
}

func (m *mockSearchUC) Search(ctx context.Context, params criteria.Params) (result.Page, error) {
	return m.searchFn(ctx, params)
}

// --- categoryUseCase mock ---

type mockCategoryUC struct {
	categoryFn func(ctx context.Context, term string) (entity.Node, []entity.Node, error)
}

func (m *mockCategoryUC) Category(ctx context.Context, term string) (entity.Node, []entity.Node, error) {
	return m.categoryFn(ctx, term)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	active   string
	inactive string
	statuses []indexuc.Status
	err      error
	dropped  string
}

func (m *mockIndexUC) Active(_ context.Context) (string, error)   { return m.active, m.err }
func (m *mockIndexUC) Inactive(_ context.Context) (string, error) { return m.inactive, m.err }

func (m *mockIndexUC) Toggle(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.active, m.inactive = m.inactive, m.active
	return m.active, nil
}

func (m *mockIndexUC) Status(_ context.Context) ([]indexuc.Status, error) {
	return m.statuses, m.err
}

func (m *mockIndexUC) Drop(_ context.Context, name string) error {
	if m.err != nil {
		return m.err
	}
	m.dropped = name
	return nil
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(
	searchSvc searchUseCase,
	categories categoryUseCase,
	indexSvc indexUseCase,
	healthSvc healthUseCase,
) *Client {
	return &Client{
		searchSvc:  searchSvc,
		categories: categories,
		indexSvc:   indexSvc,
		healthSvc:  healthSvc,
	}
}
