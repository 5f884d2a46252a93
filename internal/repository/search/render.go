package search

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/cascade/internal/domain/geo"
	"github.com/kailas-cloud/cascade/internal/domain/search/query"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
)

// FieldType holds the content type of every indexed document.
const FieldType = "type"

// renderBody builds the Elasticsearch request body for one compiled query.
func renderBody(q *query.Compiled, types []string, w result.Window) map[string]any {
	root := renderClause(q.Root())
	if len(types) > 0 {
		root = map[string]any{"bool": map[string]any{
			"must":   []any{root},
			"filter": []any{renderClause(query.Terms{Field: FieldType, Values: types})},
		}}
	}

	body := map[string]any{
		"query": root,
		"from":  w.From,
		"size":  w.Size,
	}
	if sort := renderSort(q.Sort()); len(sort) > 0 {
		body["sort"] = sort
	}
	if ms := q.MinScore(); ms > 0 {
		body["min_score"] = ms
	}
	return body
}

func renderClause(c query.Clause) map[string]any {
	switch c := c.(type) {
	case query.MatchAll:
		inner := map[string]any{}
		if c.Boost > 0 {
			inner["boost"] = c.Boost
		}
		return map[string]any{"match_all": inner}

	case query.MultiMatch:
		inner := map[string]any{
			"query":  c.Query,
			"fields": c.Fields,
		}
		if c.Type != "" {
			inner["type"] = c.Type
		}
		if c.TieBreaker > 0 {
			inner["tie_breaker"] = c.TieBreaker
		}
		if c.MinimumShouldMatch != "" {
			inner["minimum_should_match"] = c.MinimumShouldMatch
		}
		return map[string]any{"multi_match": inner}

	case query.Terms:
		inner := map[string]any{c.Field: c.Values}
		if c.Boost > 0 {
			inner["boost"] = c.Boost
		}
		return map[string]any{"terms": inner}

	case query.Range:
		bounds := map[string]any{}
		if !c.GTE.IsZero() {
			bounds["gte"] = c.GTE.Unix()
		}
		if !c.LTE.IsZero() {
			bounds["lte"] = c.LTE.Unix()
		}
		return map[string]any{"range": map[string]any{c.Field: bounds}}

	case query.GeoDistance:
		return map[string]any{"geo_distance": map[string]any{
			"distance": miles(c.Miles),
			c.Field:    latLon(c.Origin),
		}}

	case query.Bool:
		inner := map[string]any{}
		putClauses(inner, "must", c.Must)
		putClauses(inner, "should", c.Should)
		putClauses(inner, "must_not", c.MustNot)
		putClauses(inner, "filter", c.Filter)
		if c.MinimumShouldMatch > 0 {
			inner["minimum_should_match"] = c.MinimumShouldMatch
		}
		return map[string]any{"bool": inner}

	case query.FunctionScore:
		fns := make([]any, 0, len(c.Functions))
		for _, f := range c.Functions {
			fns = append(fns, renderFunction(f))
		}
		inner := map[string]any{
			"query":     renderClause(c.Query),
			"functions": fns,
		}
		if c.BoostMode != "" {
			inner["boost_mode"] = c.BoostMode
		}
		if c.MinScore != nil {
			inner["min_score"] = *c.MinScore
		}
		return map[string]any{"function_score": inner}
	}
	panic(fmt.Sprintf("search: unsupported clause %T", c))
}

func putClauses(dst map[string]any, key string, cs []query.Clause) {
	if len(cs) == 0 {
		return
	}
	out := make([]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, renderClause(c))
	}
	dst[key] = out
}

func renderFunction(f query.Function) map[string]any {
	switch f := f.(type) {
	case query.GaussDecay:
		out := map[string]any{"gauss": map[string]any{f.Field: map[string]any{
			"origin": latLon(f.Origin),
			"offset": miles(f.OffsetMiles),
			"scale":  miles(f.ScaleMiles),
		}}}
		if f.Weight > 0 {
			out["weight"] = f.Weight
		}
		return out
	case query.RandomScore:
		inner := map[string]any{"seed": f.Seed}
		if f.Field != "" {
			inner["field"] = f.Field
		}
		return map[string]any{"random_score": inner}
	}
	panic(fmt.Sprintf("search: unsupported function %T", f))
}

func renderSort(keys []query.SortKey) []any {
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]any{k.Field: map[string]any{"order": k.Order()}})
	}
	return out
}

func miles(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mi"
}

func latLon(p geo.Point) map[string]any {
	return map[string]any{"lat": p.Lat, "lon": p.Lng}
}
