package entity

import "github.com/kailas-cloud/cascade/internal/domain/geo"

// Resolution holds the concrete id sets derived from the category, region and tag terms
// of one request. It is computed once and shared by every fallback attempt.
type Resolution struct {
	// Categories is the child-level category set.
	Categories []string
	// ParentCategories holds parents of matched children plus matched roots.
	ParentCategories    []string
	ParentCategorySlugs []string

	// Regions is the region set expanded towards cities.
	Regions []string
	// ParentRegions holds parents of matched cities plus matched top-level regions.
	ParentRegions []string

	Tags []string

	// Centroids of every region node seen while resolving, keyed by id.
	Centroids map[string]geo.Point

	// CategoriesInferred and RegionsInferred mark facets derived from the free text
	// rather than requested by the caller.
	CategoriesInferred bool
	RegionsInferred    bool
}

// Centroid returns the centre of a resolved region.
func (r *Resolution) Centroid(id string) (geo.Point, bool) {
	p, ok := r.Centroids[id]
	return p, ok
}

// HasParentCategorySlug reports whether any parent category carries one of the slugs.
func (r *Resolution) HasParentCategorySlug(slugs ...string) bool {
	for _, have := range r.ParentCategorySlugs {
		for _, want := range slugs {
			if have == want {
				return true
			}
		}
	}
	return false
}
