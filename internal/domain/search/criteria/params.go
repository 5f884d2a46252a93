package criteria

import "strings"

// Params is the raw, loosely-typed parameter set of one search request.
// Keys may repeat (`category=a&category=b`) and values may be comma separated.
type Params map[string][]string

// aliases maps legacy parameter names onto canonical keys. Applied in order, so a later
// alias wins over an earlier one when both are present.
var aliases = []struct{ from, to string }{
	{"data-type", "type"},
	{"types", "type"},
	{"start-date", "starts_at"},
	{"end-date", "ends_at"},
	{"region_id", "region"},
	{"region-id", "region"},
	{"city", "region"},
	{"perPage", "limit"},
}

// Get returns the first non-empty value for key.
func (p Params) Get(key string) string {
	for _, v := range p[key] {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether key carries a non-empty value.
func (p Params) Has(key string) bool {
	return p.Get(key) != ""
}

// List returns every value of key, splitting comma-separated values and
// dropping blanks.
func (p Params) List(key string) []string {
	var out []string
	for _, v := range p[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// canonical returns a copy of p with legacy aliases folded into canonical keys.
func (p Params) canonical() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, a := range aliases {
		if v, ok := out[a.from]; ok {
			if len(v) > 0 {
				out[a.to] = v
			}
			delete(out, a.from)
		}
	}
	return out
}
