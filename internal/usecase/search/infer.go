package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	"github.com/kailas-cloud/cascade/internal/logger"
	"github.com/kailas-cloud/cascade/internal/usecase/compiler"
)

// inferFacets fills categories and regions the caller did not request from the
// documents best matching the needle. Inferred facets only boost. Failures are
// logged and leave the resolution unchanged.
func (s *Service) inferFacets(ctx context.Context, index string, cr *criteria.Criteria, res *entity.Resolution) {
	if cr.Needle() == "" {
		return
	}
	log := logger.FromContext(ctx)

	if !cr.HasCategories() {
		ids := s.topFacetIDs(ctx, index, compiler.CategoryFacet(cr.Needle()),
			compiler.CategoryFacetType, compiler.CategoryFacetSize, compiler.CategoryFacetScore)
		if len(ids) > 0 {
			exp, err := s.resolver.ResolveCategories(ctx, ids, false)
			if err != nil {
				log.Warn("Category inference failed", zap.Error(err))
			} else if len(exp.IDs) > 0 {
				res.Categories = exp.IDs
				res.ParentCategories = exp.ParentIDs
				res.ParentCategorySlugs = exp.ParentSlugs
				res.CategoriesInferred = true
			}
		}
	}

	if !cr.HasRegions() {
		ids := s.topFacetIDs(ctx, index, compiler.RegionFacet(cr.Needle()),
			compiler.RegionFacetType, compiler.RegionFacetSize, compiler.RegionFacetScore)
		if len(ids) > 0 {
			exp, err := s.resolver.ResolveRegions(ctx, ids)
			if err != nil {
				log.Warn("Region inference failed", zap.Error(err))
			} else if len(exp.IDs) > 0 {
				res.Regions = exp.IDs
				res.ParentRegions = exp.ParentIDs
				if res.Centroids == nil {
					res.Centroids = exp.Centroids
				} else {
					for id, c := range exp.Centroids {
						res.Centroids[id] = c
					}
				}
				res.RegionsInferred = true
			}
		}
	}

	if cr.Debug("category") || cr.Debug("region") {
		log.Info("search_debug",
			zap.String("stage", "inference"),
			zap.Strings("categories", res.Categories),
			zap.Bool("categories_inferred", res.CategoriesInferred),
			zap.Strings("regions", res.Regions),
			zap.Bool("regions_inferred", res.RegionsInferred),
		)
	}
}

// topFacetIDs returns the ids of hits scoring strictly above threshold.
func (s *Service) topFacetIDs(
	ctx context.Context, index string, q query.Compiled,
	typ string, size int, threshold float64,
) []string {
	set, err := s.backend.Execute(ctx, index, &q, []string{typ}, result.Window{Size: size})
	if err != nil {
		logger.FromContext(ctx).Warn("Facet lookup failed", zap.String("type", typ), zap.Error(err))
		return nil
	}
	var ids []string
	for i := range set.Hits {
		if set.Hits[i].Score() > threshold {
			ids = append(ids, set.Hits[i].ID())
		}
	}
	return ids
}
