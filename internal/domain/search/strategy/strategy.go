// Package strategy describes how strictly each facet of a search is applied.
// A fallback attempt is a named set of overrides on top of Defaults.
package strategy

// DefaultBoost is the should-clause boost applied to soft facets.
const DefaultBoost = 2

// Facet controls one part of the compiled query.
type Facet struct {
	// Strict turns the facet into a hard constraint when the caller asked for it.
	Strict bool
	// Boost weights the facet when it is only a relevance signal.
	Boost float64
	// UseParentIDs swaps the resolved ids for their parent-level ids.
	UseParentIDs bool
}

// Config is the strictness configuration of one compile call.
type Config struct {
	Needle     Facet
	Categories Facet
	Regions    Facet
	Tags       Facet
}

// Defaults returns the base configuration: free text is a soft signal, facets are strict.
func Defaults() Config {
	return Config{
		Needle:     Facet{Boost: 1},
		Categories: Facet{Strict: true, Boost: DefaultBoost},
		Regions:    Facet{Strict: true, Boost: DefaultBoost},
		Tags:       Facet{Strict: true, Boost: DefaultBoost},
	}
}

// Override mutates a configuration in place.
type Override struct {
	Key   string
	apply func(*Config)
}

// Named overrides, keyed the way they appear in diagnostics.
var (
	NeedleStrict      = Override{Key: "needle.strict", apply: func(c *Config) { c.Needle.Strict = true }}
	CategoriesLenient = Override{Key: "categories.strict=false", apply: func(c *Config) { c.Categories.Strict = false }}
	CategoriesParents = Override{Key: "categories.parents", apply: func(c *Config) { c.Categories.UseParentIDs = true }}
	RegionsLenient    = Override{Key: "regions.strict=false", apply: func(c *Config) { c.Regions.Strict = false }}
	RegionsParents    = Override{Key: "regions.parents", apply: func(c *Config) { c.Regions.UseParentIDs = true }}
	TagsLenient       = Override{Key: "tags.strict=false", apply: func(c *Config) { c.Tags.Strict = false }}
)

// Build applies overrides to Defaults in order.
func Build(overrides ...Override) Config {
	c := Defaults()
	for _, o := range overrides {
		if o.apply != nil {
			o.apply(&c)
		}
	}
	return c
}

// Attempt is one entry of a fallback plan.
type Attempt struct {
	Name      string
	Overrides []Override
}

// NewAttempt names an attempt after its overrides.
func NewAttempt(overrides ...Override) Attempt {
	name := ""
	for i, o := range overrides {
		if i > 0 {
			name += ","
		}
		name += o.Key
	}
	if name == "" {
		name = "default"
	}
	return Attempt{Name: name, Overrides: overrides}
}

// Config materializes the attempt's strategy configuration.
func (a Attempt) Config() Config {
	return Build(a.Overrides...)
}
