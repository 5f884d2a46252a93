package criteria

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonASCII   = regexp.MustCompile(`[^0-9a-zA-Z ]`)
)

// SanitizeNeedle reduces free text to ASCII letters, digits and single spaces.
// The policy is lossy on purpose: accented and non-Latin characters are dropped.
func SanitizeNeedle(q string) string {
	if q == "" {
		return ""
	}
	if decoded, err := url.QueryUnescape(q); err == nil {
		q = decoded
	}
	q = strings.NewReplacer("'", " ", `"`, " ").Replace(q)
	q = whitespace.ReplaceAllString(q, " ")
	q = nonASCII.ReplaceAllString(q, "")
	return strings.TrimSpace(q)
}
