package search

import (
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/mode"
	"github.com/kailas-cloud/cascade/internal/domain/search/strategy"
)

// DefaultLandingSlugs are the parent categories that get landing-page fallback.
var DefaultLandingSlugs = []string{"places-to-stay"}

// Plan chooses the ordered fallback attempts for a request. Strict requests get
// exactly one attempt; landing pages widen from city to region to everywhere.
func Plan(cr *criteria.Criteria, res *entity.Resolution, landingSlugs []string) (mode.Mode, []strategy.Attempt) {
	if cr.Strict() {
		return mode.Strict, []strategy.Attempt{
			strategy.NewAttempt(strategy.NeedleStrict),
		}
	}

	if cr.HasMode(criteria.ModeParent) && res.HasParentCategorySlug(landingSlugs...) {
		return mode.Landing, []strategy.Attempt{
			strategy.NewAttempt(strategy.CategoriesParents),
			strategy.NewAttempt(strategy.CategoriesParents, strategy.RegionsParents),
			strategy.NewAttempt(strategy.CategoriesParents, strategy.RegionsLenient),
		}
	}

	return mode.Default, []strategy.Attempt{
		strategy.NewAttempt(strategy.RegionsLenient),
	}
}
