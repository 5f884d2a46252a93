// Package query holds the backend-neutral representation of a compiled search query.
// Adapters render it into their own wire format.
package query

import (
	"time"

	"github.com/kailas-cloud/cascade/internal/domain/geo"
)

// Clause is one node of the boolean query tree.
type Clause interface {
	clause()
}

// MatchAll matches every document with a constant score.
type MatchAll struct {
	Boost float64
}

// MultiMatch runs a full-text match across weighted fields ("name^10").
type MultiMatch struct {
	Query              string
	Fields             []string
	Type               string
	TieBreaker         float64
	MinimumShouldMatch string
}

// Terms matches documents whose field equals any of the values.
type Terms struct {
	Field  string
	Values []string
	Boost  float64
}

// Range bounds a date field. Zero bounds are open.
type Range struct {
	Field string
	GTE   time.Time
	LTE   time.Time
}

// GeoDistance keeps documents within Miles of Origin.
type GeoDistance struct {
	Field  string
	Origin geo.Point
	Miles  float64
}

// Bool combines clauses with boolean semantics.
type Bool struct {
	Must    []Clause
	Should  []Clause
	MustNot []Clause
	Filter  []Clause
	// MinimumShouldMatch is only rendered when positive.
	MinimumShouldMatch int
}

// IsEmpty reports whether the bool has no clauses at all.
func (b Bool) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0 && len(b.Filter) == 0
}

// FunctionScore wraps a query with additive scoring functions.
type FunctionScore struct {
	Query     Clause
	Functions []Function
	BoostMode string
	// MinScore is applied to the combined score when set.
	MinScore *float64
}

func (MatchAll) clause() {}
func (MultiMatch) clause() {}
func (Terms) clause() {}
func (Range) clause() {}
func (GeoDistance) clause() {}
func (Bool) clause() {}
func (FunctionScore) clause() {}

// Function is a scoring function inside a FunctionScore.
type Function interface {
	function()
}

// GaussDecay scores documents by distance from Origin along a gaussian curve.
type GaussDecay struct {
	Field       string
	Origin      geo.Point
	OffsetMiles float64
	ScaleMiles  float64
	Weight      float64
}

// RandomScore adds a reproducible pseudo-random score per document.
type RandomScore struct {
	Seed  uint32
	Field string
}

func (GaussDecay) function() {}
func (RandomScore) function() {}

// SortKey orders results by a backend field.
type SortKey struct {
	Field string
	Desc  bool
}

// Order returns "asc" or "desc".
func (k SortKey) Order() string {
	if k.Desc {
		return "desc"
	}
	return "asc"
}
