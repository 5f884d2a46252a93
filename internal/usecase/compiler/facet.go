package compiler

import "github.com/kailas-cloud/cascade/internal/domain/search/query"

// Content types and thresholds used to infer facets from free text.
const (
	CategoryFacetType  = "categories"
	CategoryFacetSize  = 3
	CategoryFacetScore = 0.5

	RegionFacetType  = "regions"
	RegionFacetSize  = 1
	RegionFacetScore = 0.25
)

var regionFacetFields = []string{
	"name.lower_case_sort^20",
	"name^10",
	"intro",
	"body",
	"meta_title",
	"meta_keywords",
	"meta_description",
}

// CategoryFacet matches category documents against the needle.
func CategoryFacet(needle string) query.Compiled {
	return query.New(query.Bool{Should: []query.Clause{TextMatch(needle)}}, nil, nil, nil, 0, 0)
}

// RegionFacet matches region documents against the needle. It is stricter about
// term coverage than the category query so short names do not match everything.
func RegionFacet(needle string) query.Compiled {
	m := query.MultiMatch{
		Query:              needle,
		Fields:             regionFacetFields,
		Type:               "best_fields",
		TieBreaker:         0.5,
		MinimumShouldMatch: "2<25%",
	}
	return query.New(query.Bool{Should: []query.Clause{m}}, nil, nil, nil, 0, 0)
}
