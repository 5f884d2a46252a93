// Package compiler turns normalized criteria, a strategy configuration and resolved
// entity sets into a backend-neutral query.
package compiler

import (
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/strategy"
)

// Document fields referenced by compiled queries.
const (
	FieldCategories = "categories"
	FieldRegion     = "region_id"
	FieldTags       = "tags"
	FieldPriority   = "priority"
	FieldStartsAt   = "starts_at"
	FieldEndsAt     = "ends_at"
	FieldLocation   = "location"
	FieldScore      = "_score"
	FieldNameSort   = "name.keyword"
	FieldRandomSeq  = "_seq_no"
)

// TextFields are the weighted fields searched by free text.
var TextFields = []string{
	"name.lower_case_sort^20",
	"name^10",
	"intro^5",
	"body",
	"meta_title",
	"meta_keywords^5",
	"meta_description^5",
}

// Scoring constants.
const (
	TextTieBreaker     = 0.3
	ProximityWeight    = 10
	StrictNeedleScore  = 0.25
	matchAllBoost      = 0.99
	functionScoreShift = 1.00
)

// Compiler builds queries. It holds no per-request state.
type Compiler struct {
	seeder Seeder
}

// New creates a Compiler.
func New(seeder Seeder) *Compiler {
	return &Compiler{seeder: seeder}
}

// build accumulates one compile call.
type build struct {
	bool      query.Bool
	filters   []query.Clause
	functions []query.Function
	sort      []criteria.SortTerm
}

// Compile produces a fresh query for one attempt.
func (c *Compiler) Compile(cr *criteria.Criteria, cfg strategy.Config, res *entity.Resolution) query.Compiled {
	if res == nil {
		res = &entity.Resolution{}
	}
	b := &build{sort: cr.Sort()}

	applyNeedle(b, cr, cfg.Needle)
	applyCategories(b, cr, cfg.Categories, res)
	origin := applyRegions(b, cr, cfg.Regions, res)
	applyTags(b, cfg.Tags, res)
	applyDateRange(b, cr)
	applyPriority(b, cr)
	applyProximity(b, cr, origin)

	sortKeys := c.applySort(b, cr)

	base := cr.MinScore()
	if base == 0 && cr.Needle() != "" && cfg.Needle.Strict {
		base = StrictNeedleScore
	}
	fnMin := base
	if len(b.functions) > 0 && len(b.bool.Must) == 0 {
		b.bool.Must = append(b.bool.Must, query.MatchAll{Boost: matchAllBoost})
		fnMin = base + functionScoreShift
	}

	return query.New(b.bool, b.filters, b.functions, sortKeys, base, fnMin)
}

// TextMatch builds the weighted full-text clause used for the needle.
func TextMatch(needle string) query.MultiMatch {
	return query.MultiMatch{
		Query:      needle,
		Fields:     TextFields,
		Type:       "best_fields",
		TieBreaker: TextTieBreaker,
	}
}

func applyNeedle(b *build, cr *criteria.Criteria, f strategy.Facet) {
	if cr.Needle() == "" {
		return
	}
	m := TextMatch(cr.Needle())
	if f.Strict {
		b.bool.Must = append(b.bool.Must, m)
		return
	}
	b.bool.Should = append(b.bool.Should, m)
}

func applyCategories(b *build, cr *criteria.Criteria, f strategy.Facet, res *entity.Resolution) {
	ids := res.Categories
	if f.UseParentIDs {
		ids = res.ParentCategories
	}
	applyFacet(b, FieldCategories, ids, f, cr.HasCategories())
}

// applyRegions returns the centroid proximity origin when the single-region
// shortcut applies.
func applyRegions(b *build, cr *criteria.Criteria, f strategy.Facet, res *entity.Resolution) *criteria.Proximity {
	ids := res.Regions
	if f.UseParentIDs {
		ids = res.ParentRegions
	}
	if len(ids) == 0 {
		return nil
	}
	boosted := applyFacet(b, FieldRegion, ids, f, cr.HasRegions())
	if !boosted || len(ids) != 1 {
		return nil
	}
	centroid, ok := res.Centroid(ids[0])
	if !ok {
		return nil
	}
	b.sort = []criteria.SortTerm{{Field: criteria.SortRelevancy, Desc: true}}
	d := cr.Distance()
	d.Max = 0
	return &criteria.Proximity{Origin: centroid, Distance: d}
}

// applyFacet adds ids as a hard filter when the facet is strict and explicitly
// requested, otherwise as a boosted should clause. It reports whether the boost
// path was taken.
func applyFacet(b *build, field string, ids []string, f strategy.Facet, explicit bool) bool {
	if len(ids) == 0 {
		return false
	}
	if f.Strict && explicit {
		b.filters = append(b.filters, query.Terms{Field: field, Values: ids})
		return false
	}
	b.bool.Should = append(b.bool.Should, query.Terms{Field: field, Values: ids, Boost: f.Boost})
	return true
}

func applyTags(b *build, f strategy.Facet, res *entity.Resolution) {
	tags := res.Tags
	if len(tags) == 0 {
		return
	}
	if f.Strict {
		b.filters = append(b.filters, query.Terms{Field: FieldTags, Values: tags})
		return
	}
	b.bool.Should = append(b.bool.Should, query.Terms{Field: FieldTags, Values: tags, Boost: f.Boost})
}

func applyDateRange(b *build, cr *criteria.Criteria) {
	r, ok := cr.DateRange()
	if !ok {
		return
	}
	b.filters = append(b.filters, query.Bool{
		Should: []query.Clause{
			query.Range{Field: FieldStartsAt, GTE: r.Start, LTE: r.End},
			query.Range{Field: FieldEndsAt, GTE: r.Start, LTE: r.End},
			query.Bool{Must: []query.Clause{
				query.Range{Field: FieldStartsAt, LTE: r.Start},
				query.Range{Field: FieldEndsAt, GTE: r.End},
			}},
		},
		MinimumShouldMatch: 1,
	})
}

func applyPriority(b *build, cr *criteria.Criteria) {
	if p := cr.Priority(); p != "" {
		b.bool.Must = append(b.bool.Must, query.Terms{Field: FieldPriority, Values: []string{p}})
	}
}

func applyProximity(b *build, cr *criteria.Criteria, override *criteria.Proximity) {
	p, ok := cr.Proximity()
	if override != nil {
		p, ok = *override, true
	}
	if !ok {
		return
	}
	b.functions = append(b.functions, query.GaussDecay{
		Field:       FieldLocation,
		Origin:      p.Origin,
		OffsetMiles: p.Offset,
		ScaleMiles:  p.Scale,
		Weight:      ProximityWeight,
	})
	if p.Max > 0 {
		b.filters = append(b.filters, query.GeoDistance{Field: FieldLocation, Origin: p.Origin, Miles: p.Max})
	}
}

// applySort maps symbolic sort fields to backend keys. Random ordering becomes a
// scoring function instead of a sort key.
func (c *Compiler) applySort(b *build, cr *criteria.Criteria) []query.SortKey {
	var keys []query.SortKey
	for _, t := range b.sort {
		switch t.Field {
		case criteria.SortRelevancy:
			keys = append(keys, query.SortKey{Field: FieldScore, Desc: t.Desc})
		case criteria.SortAlpha:
			keys = append(keys, query.SortKey{Field: FieldNameSort, Desc: t.Desc})
		case criteria.SortRandom:
			b.functions = append(b.functions, query.RandomScore{
				Seed:  c.seeder.Seed(cr.Session()),
				Field: FieldRandomSeq,
			})
		default:
			keys = append(keys, query.SortKey{Field: t.Field, Desc: t.Desc})
		}
	}
	return keys
}
