// Package criteria turns raw request parameters into a canonical, immutable search
// criteria record. Normalization never fails: anything missing or malformed falls back
// to a declared default.
package criteria

import (
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/cascade/internal/domain/geo"
)

// Pagination and distance defaults.
const (
	DefaultPage           = 1
	DefaultLimit          = 12
	MaxLimit              = 100
	DefaultDistanceOffset = 0
	DefaultDistanceScale  = 75
	DefaultDistanceMax    = 75

	// ResultWindow bounds offset+limit, matching the backend's default
	// index.max_result_window.
	ResultWindow = 10000
)

// KnownTypes is the full list of indexed content types, used when a request names none.
var KnownTypes = []string{
	"adventures", "deals", "events", "places", "regions",
	"discover", "treks", "posts", "insiders",
}

// Request modes.
const (
	// ModeParent asks for landing-page style results for a whole category branch.
	ModeParent = "parent"
	// ModeCategories re-adds explicitly requested categories lost during expansion.
	ModeCategories = "categories"
)

// EventTag is the tag slug that implies an upcoming-events date window.
const EventTag = "event"

// Defaults holds the values applied when a request omits or garbles a parameter.
type Defaults struct {
	Limit          int
	MaxLimit       int
	Sort           string
	Types          []string
	DistanceOffset float64
	DistanceScale  float64
	DistanceMax    float64
	ResultWindow   int
	Location       *time.Location
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Defaults {
	return Defaults{
		Limit:          DefaultLimit,
		MaxLimit:       MaxLimit,
		Sort:           DefaultSort,
		Types:          KnownTypes,
		DistanceOffset: DefaultDistanceOffset,
		DistanceScale:  DefaultDistanceScale,
		DistanceMax:    DefaultDistanceMax,
		ResultWindow:   ResultWindow,
		Location:       time.UTC,
	}
}

// Distance configures the proximity decay curve, in miles. Max of zero means no cap.
type Distance struct {
	Offset float64
	Scale  float64
	Max    float64
}

// Proximity is a geo origin together with its decay settings.
type Proximity struct {
	Origin geo.Point
	Distance
}

// Criteria is a normalized search request.
type Criteria struct {
	needle   string
	strict   bool
	minScore float64

	categoryTerms []string
	regionTerms   []string
	tagTerms      []string

	dateRange *DateRange
	sort      []SortTerm
	page      int
	limit     int
	types     []string
	priority  string

	origin   *geo.Point
	distance Distance

	modes   []string
	debug   []string
	engine  string
	index   string
	session string
}

// Normalize builds Criteria from raw params. now anchors relative dates.
func Normalize(p Params, d Defaults, now time.Time) Criteria {
	p = p.canonical()
	d = d.withFallbacks()
	now = now.In(d.Location)

	c := Criteria{
		needle:        SanitizeNeedle(p.Get("q")),
		strict:        parseBool(p.Get("strict")),
		minScore:      parseNonNegative(p.Get("min_score")),
		categoryTerms: dedupe(p.List("category")),
		regionTerms:   dedupe(p.List("region")),
		tagTerms:      dedupe(p.List("tag")),
		priority:      p.Get("priority"),
		modes:         p.List("mode"),
		debug:         splitDebug(p.Get("debug")),
		engine:        p.Get("engine"),
		index:         p.Get("index"),
		session:       p.Get("session"),
	}

	c.page = parsePositive(p.Get("page"), DefaultPage)
	c.limit = parsePositive(p.Get("limit"), d.Limit)
	if d.MaxLimit > 0 && c.limit > d.MaxLimit {
		c.limit = d.MaxLimit
	}
	if c.limit > d.ResultWindow {
		c.limit = d.ResultWindow
	}
	// Pages past the result window collapse onto the last reachable one.
	if maxPage := d.ResultWindow / c.limit; c.page > maxPage {
		c.page = maxPage
	}

	c.sort = ParseSort(p.Get("sort"))
	if len(c.sort) == 0 {
		c.sort = ParseSort(d.Sort)
	}

	c.types = filterTypes(p.List("type"), d.Types)

	if p.Has("starts_at") || p.Has("ends_at") {
		r := computeRange(p.Get("starts_at"), p.Get("ends_at"), now)
		c.dateRange = &r
	}
	if c.dateRange == nil && c.needle == "" && isEventTag(c.tagTerms) {
		r := computeRange("", "", now)
		c.dateRange = &r
	}

	lat, latOK := parseFloat(p.Get("lat"))
	lng, lngOK := parseFloat(p.Get("lng"))
	if latOK && lngOK && lat != 0 && lng != 0 {
		if origin := (geo.Point{Lat: lat, Lng: lng}); origin.Valid() {
			c.origin = &origin
		}
	}
	c.distance = Distance{
		Offset: floatOr(p, "distance_offset", d.DistanceOffset),
		Scale:  floatOr(p, "distance_scale", d.DistanceScale),
		Max:    floatOr(p, "distance_max", d.DistanceMax),
	}

	return c
}

func (d Defaults) withFallbacks() Defaults {
	def := DefaultSettings()
	if d.Limit <= 0 {
		d.Limit = def.Limit
	}
	if d.Sort == "" {
		d.Sort = def.Sort
	}
	if len(d.Types) == 0 {
		d.Types = def.Types
	}
	if d.DistanceScale <= 0 {
		d.DistanceScale = def.DistanceScale
	}
	if d.ResultWindow <= 0 {
		d.ResultWindow = def.ResultWindow
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return d
}

// Needle returns the sanitized free text.
func (c *Criteria) Needle() string { return c.needle }

// Strict reports whether the caller asked for strict matching.
func (c *Criteria) Strict() bool { return c.strict }

// MinScore returns the explicit minimum score, zero when not requested.
func (c *Criteria) MinScore() float64 { return c.minScore }

// CategoryTerms returns the raw category ids or slugs requested.
func (c *Criteria) CategoryTerms() []string { return c.categoryTerms }

// RegionTerms returns the raw region or city ids or slugs requested.
func (c *Criteria) RegionTerms() []string { return c.regionTerms }

// TagTerms returns the raw tag ids or slugs requested.
func (c *Criteria) TagTerms() []string { return c.tagTerms }

// HasCategories reports whether the caller requested categories explicitly.
func (c *Criteria) HasCategories() bool { return len(c.categoryTerms) > 0 }

// HasRegions reports whether the caller requested regions explicitly.
func (c *Criteria) HasRegions() bool { return len(c.regionTerms) > 0 }

// DateRange returns the requested window, if any.
func (c *Criteria) DateRange() (DateRange, bool) {
	if c.dateRange == nil {
		return DateRange{}, false
	}
	return *c.dateRange, true
}

// Sort returns the validated sort terms (never empty).
func (c *Criteria) Sort() []SortTerm { return c.sort }

// Page returns the 1-based page number.
func (c *Criteria) Page() int { return c.page }

// Limit returns the page size.
func (c *Criteria) Limit() int { return c.limit }

// Offset returns the number of hits skipped before this page.
func (c *Criteria) Offset() int { return (c.page - 1) * c.limit }

// Types returns the content types to search.
func (c *Criteria) Types() []string { return c.types }

// Priority returns the exact priority filter, empty when absent.
func (c *Criteria) Priority() string { return c.priority }

// Distance returns the proximity decay settings, present even without an origin.
func (c *Criteria) Distance() Distance { return c.distance }

// Proximity returns the caller's geo origin with its decay settings.
func (c *Criteria) Proximity() (Proximity, bool) {
	if c.origin == nil {
		return Proximity{}, false
	}
	return Proximity{Origin: *c.origin, Distance: c.distance}, true
}

// HasMode reports whether the request carries mode m.
func (c *Criteria) HasMode(m string) bool {
	for _, have := range c.modes {
		if have == m {
			return true
		}
	}
	return false
}

// Modes returns the request modes.
func (c *Criteria) Modes() []string { return c.modes }

// Debug reports whether diagnostic output for flag was requested.
func (c *Criteria) Debug(flag string) bool {
	for _, f := range c.debug {
		if f == flag || f == "all" {
			return true
		}
	}
	return false
}

// Engine returns the requested engine selector.
func (c *Criteria) Engine() string { return c.engine }

// Index returns an explicit index override, empty when absent.
func (c *Criteria) Index() string { return c.index }

// Session returns the caller's session identity, empty when anonymous.
func (c *Criteria) Session() string { return c.session }

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseNonNegative(s string) float64 {
	f, ok := parseFloat(s)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func floatOr(p Params, key string, def float64) float64 {
	f, ok := parseFloat(p.Get(key))
	if !ok || f < 0 {
		return def
	}
	return f
}

func splitDebug(s string) []string {
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ','
	})
}

func filterTypes(requested, known []string) []string {
	if len(requested) == 0 {
		return known
	}
	allowed := make(map[string]struct{}, len(known))
	for _, t := range known {
		allowed[t] = struct{}{}
	}
	var out []string
	for _, t := range dedupe(requested) {
		if _, ok := allowed[t]; ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return known
	}
	return out
}

func isEventTag(tags []string) bool {
	return len(tags) == 1 && tags[0] == EventTag
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
