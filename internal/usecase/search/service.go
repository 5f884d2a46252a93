// Package search runs the fallback search: normalize, resolve, then issue attempts of
// decreasing strictness until one yields results.
package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/logger"
	"github.com/kailas-cloud/cascade/internal/metrics"
)

var tracer = otel.Tracer("github.com/kailas-cloud/cascade/internal/usecase/search")

// Options tunes the search service.
type Options struct {
	Defaults     criteria.Defaults
	LandingSlugs []string
	InferFacets  bool
	Now          func() time.Time
}

// Service orchestrates fallback searches.
type Service struct {
	backend  Backend
	indices  IndexNamer
	resolver Resolver
	compiler Compiler
	mapper   *Mapper
	stale    StaleSink
	opts     Options
}

// New creates a search service.
func New(
	backend Backend, indices IndexNamer, resolver Resolver,
	compiler Compiler, records RecordChecker, stale StaleSink, opts Options,
) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.LandingSlugs) == 0 {
		opts.LandingSlugs = DefaultLandingSlugs
	}
	return &Service{
		backend:  backend,
		indices:  indices,
		resolver: resolver,
		compiler: compiler,
		mapper:   NewMapper(records),
		stale:    stale,
		opts:     opts,
	}
}

// Search runs the fallback plan for raw request parameters and returns the first
// non-empty page. A backend failure aborts the plan.
func (s *Service) Search(ctx context.Context, params criteria.Params) (result.Page, error) {
	ctx, span := tracer.Start(ctx, "search.Search")
	defer span.End()
	log := logger.FromContext(ctx)

	cr := criteria.Normalize(params, s.opts.Defaults, s.opts.Now())
	if cr.Debug("criteria") {
		log.Info("search_debug",
			zap.String("stage", "criteria"),
			zap.String("needle", cr.Needle()),
			zap.Bool("strict", cr.Strict()),
			zap.Strings("categories", cr.CategoryTerms()),
			zap.Strings("regions", cr.RegionTerms()),
			zap.Strings("tags", cr.TagTerms()),
			zap.Strings("types", cr.Types()),
			zap.Int("page", cr.Page()),
			zap.Int("limit", cr.Limit()),
		)
	}

	index := s.activeIndex(ctx, &cr)
	span.SetAttributes(attribute.String("search.index", index))

	res, err := s.resolver.Resolve(ctx, &cr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve")
		return result.Page{}, fmt.Errorf("resolve criteria: %w", err)
	}
	if s.opts.InferFacets {
		s.inferFacets(ctx, index, &cr, &res)
	}

	plan, attempts := Plan(&cr, &res, s.opts.LandingSlugs)
	span.SetAttributes(attribute.String("search.plan", string(plan)))

	window := result.Window{From: cr.Offset(), Size: cr.Limit()}
	for i, a := range attempts {
		q := s.compiler.Compile(&cr, a.Config(), &res)
		if cr.Debug("params") {
			log.Info("search_debug",
				zap.String("stage", "params"),
				zap.Int("attempt", i+1),
				zap.String("strategy", a.Name),
				zap.Any("query", q.Root()),
				zap.Float64("min_score", q.MinScore()),
			)
		}

		attemptCtx, attemptSpan := tracer.Start(ctx, "search.Attempt", trace.WithAttributes(
			attribute.Int("search.attempt", i+1),
			attribute.String("search.strategy", a.Name),
		))
		start := time.Now()
		set, err := s.backend.Execute(attemptCtx, index, &q, cr.Types(), window)
		metrics.BackendRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
		attemptLabel := strconv.Itoa(i + 1)

		if err != nil {
			attemptSpan.RecordError(err)
			attemptSpan.SetStatus(codes.Error, "backend")
			attemptSpan.End()
			metrics.SearchAttemptsTotal.WithLabelValues(string(plan), attemptLabel, "error").Inc()
			metrics.SearchRequestsTotal.WithLabelValues(string(plan), "error").Inc()
			log.Error("Search attempt failed",
				zap.String("index", index),
				zap.Int("attempt", i+1),
				zap.String("strategy", a.Name),
				zap.Error(err),
			)
			span.SetStatus(codes.Error, "backend")
			return result.Page{}, &domain.AttemptError{Attempt: i + 1, Name: a.Name, Err: err}
		}
		attemptSpan.SetAttributes(attribute.Int("search.total", set.Total))
		attemptSpan.End()

		if set.IsEmpty() {
			metrics.SearchAttemptsTotal.WithLabelValues(string(plan), attemptLabel, "empty").Inc()
			continue
		}
		metrics.SearchAttemptsTotal.WithLabelValues(string(plan), attemptLabel, "hit").Inc()
		metrics.SearchRequestsTotal.WithLabelValues(string(plan), "hit").Inc()

		page, stale := s.mapper.Map(ctx, set, &cr)
		if len(stale) > 0 && s.stale != nil {
			s.stale.Enqueue(index, stale)
		}
		log.Debug("Search completed",
			zap.String("plan", string(plan)),
			zap.Int("attempt", i+1),
			zap.Int("total", page.Total),
			zap.Int("items", len(page.Items)),
			zap.Int("stale", len(stale)),
		)
		return page, nil
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(plan), "empty").Inc()
	return result.Empty(cr.Page(), cr.Limit()), nil
}

func (s *Service) activeIndex(ctx context.Context, cr *criteria.Criteria) string {
	if idx := cr.Index(); idx != "" {
		return idx
	}
	idx, err := s.indices.Active(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Active index lookup failed, using fallback",
			zap.String("index", idx), zap.Error(err))
	}
	if cr.Debug("index") {
		logger.FromContext(ctx).Info("search_debug", zap.String("stage", "index"), zap.String("index", idx))
	}
	return idx
}
