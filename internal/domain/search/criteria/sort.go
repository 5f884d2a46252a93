package criteria

import "strings"

// Symbolic sort fields resolved by the query compiler.
const (
	SortRelevancy = "relevancy"
	SortAlpha     = "alpha"
	SortRandom    = "random"
)

// DefaultSort orders by descending relevance.
const DefaultSort = "-" + SortRelevancy

var sortable = map[string]struct{}{
	SortRelevancy: {},
	"popularity":  {},
	SortAlpha:     {},
	SortRandom:    {},
	"id":          {},
	"post_at":     {},
	"starts_at":   {},
	"priority":    {},
	"duration":    {},
}

// SortTerm is one (field, direction) pair.
type SortTerm struct {
	Field string
	Desc  bool
}

// String renders the term in request form ("-field" for descending).
func (t SortTerm) String() string {
	if t.Desc {
		return "-" + t.Field
	}
	return t.Field
}

// IsSortable reports whether field is a recognized sort field.
func IsSortable(field string) bool {
	_, ok := sortable[field]
	return ok
}

// ParseSort parses a comma-separated sort expression, silently dropping
// unrecognized fields.
func ParseSort(expr string) []SortTerm {
	var terms []SortTerm
	for _, raw := range strings.Split(strings.ToLower(expr), ",") {
		raw = strings.TrimSpace(raw)
		field := strings.TrimLeft(raw, "-")
		if !IsSortable(field) {
			continue
		}
		terms = append(terms, SortTerm{Field: field, Desc: strings.HasPrefix(raw, "-")})
	}
	return terms
}
