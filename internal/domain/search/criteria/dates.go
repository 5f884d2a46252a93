package criteria

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateRange is an inclusive window of whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

var relativeDate = regexp.MustCompile(`^([+-]?\d+)\s*(day|week|month|year)s?$`)

// parseDate understands the relative forms "now", "today", "tomorrow", "yesterday"
// and "+N day|week|month|year". Anything else is parsed as an absolute date in the
// location of now.
func parseDate(expr string, now time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(expr)
	low := strings.ToLower(raw)
	switch low {
	case "", "now", "today":
		return now, true
	case "tomorrow":
		return now.AddDate(0, 0, 1), true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	if m := relativeDate.FindStringSubmatch(low); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		switch m[2] {
		case "day":
			return now.AddDate(0, 0, n), true
		case "week":
			return now.AddDate(0, 0, 7*n), true
		case "month":
			return now.AddDate(0, n, 0), true
		default:
			return now.AddDate(n, 0, 0), true
		}
	}

	t, err := dateparse.ParseIn(raw, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// computeRange builds the request window. A missing or unparseable start means
// today; a missing or unparseable end means one year from now. If the window is
// empty or inverted the end is pushed to start + 365 days.
func computeRange(startExpr, endExpr string, now time.Time) DateRange {
	start, ok := parseDate(startExpr, now)
	if !ok {
		start = now
	}
	end := now.AddDate(1, 0, 0)
	if strings.TrimSpace(endExpr) != "" {
		if t, ok := parseDate(endExpr, now); ok {
			end = t
		}
	}

	r := DateRange{Start: startOfDay(start), End: endOfDay(end)}
	if !r.Start.Before(r.End) {
		r.End = endOfDay(r.Start.Add(365 * 24 * time.Hour))
	}
	return r
}
