package assistant

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Heuristic patterns, applied only after ResolveRelative found nothing.
// Order matters: the first matching rule wins.
var (
	sinceRe     = regexp.MustCompile(`\bsince\s+([a-z]+(?:\s+\d{4})?|\d{4})`)
	betweenRe   = regexp.MustCompile(`\bbetween\s+(.+?)\s+and\s+(.+?)(?:[,.?!]|$)`)
	lastDaysRe  = regexp.MustCompile(`\blast\s+(\d+)\s+days?\b`)
	fromUntilRe = regexp.MustCompile(`\bfrom\s+(.+?)\s+(?:until|till|to)\s+now\b`)
)

var errBadDateToken = errors.New("unparseable date token")

// dateBoundary says which side of a range a coarse token anchors: a bare
// month or year snaps to its first day as a start and its last day as an end.
type dateBoundary int

const (
	boundaryStart dateBoundary = iota
	boundaryEnd
)

// ResolveHeuristic parses free-form range phrasing not covered by the
// canonical relative table. Returns false when no pattern matches or any
// date token fails to parse; the caller falls through to the default range.
func ResolveHeuristic(text string, now time.Time) (DateRange, bool) {
	t := strings.ToLower(text)
	today := dateOf(now)

	if m := sinceRe.FindStringSubmatch(t); m != nil {
		start, err := parseDateToken(m[1], now, boundaryStart)
		if err != nil {
			return DateRange{}, false
		}
		return rangeBetween(start, today), true
	}

	if m := betweenRe.FindStringSubmatch(t); m != nil {
		start, err := parseDateToken(m[1], now, boundaryStart)
		if err != nil {
			return DateRange{}, false
		}
		end, err := parseDateToken(m[2], now, boundaryEnd)
		if err != nil {
			return DateRange{}, false
		}
		if end.Before(start) {
			return DateRange{}, false
		}
		return rangeBetween(start, end), true
	}

	if m := lastDaysRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return DateRange{}, false
		}
		// Rolling window of exactly n days, inclusive of today.
		start := today.AddDate(0, 0, -(n - 1))
		r := rangeBetween(start, today)
		r.Label = fmt.Sprintf("the last %d days", n)
		return r, true
	}

	if m := fromUntilRe.FindStringSubmatch(t); m != nil {
		start, err := parseDateToken(m[1], now, boundaryStart)
		if err != nil {
			return DateRange{}, false
		}
		return rangeBetween(start, today), true
	}

	return DateRange{}, false
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// parseDateToken accepts bare month names, "month year" pairs, and bare
// years. Missing years default to now's year. Coarse tokens snap to the
// first day of the unit at a range start and the last day at a range end.
func parseDateToken(token string, now time.Time, boundary dateBoundary) (time.Time, error) {
	token = strings.TrimSpace(strings.Trim(token, ".,?!"))
	if token == "" {
		return time.Time{}, errBadDateToken
	}

	fields := strings.Fields(token)
	year := now.UTC().Year()

	switch len(fields) {
	case 1:
		// Bare year.
		if y, err := strconv.Atoi(fields[0]); err == nil {
			if y < 1970 || y > 9999 {
				return time.Time{}, errBadDateToken
			}
			if boundary == boundaryEnd {
				return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC), nil
			}
			return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), nil
		}
		// Bare month name, current year.
		month, ok := monthNames[fields[0]]
		if !ok {
			return time.Time{}, errBadDateToken
		}
		return monthBoundary(year, month, boundary), nil

	case 2:
		// "month year".
		month, ok := monthNames[fields[0]]
		if !ok {
			return time.Time{}, errBadDateToken
		}
		y, err := strconv.Atoi(fields[1])
		if err != nil || y < 1970 || y > 9999 {
			return time.Time{}, errBadDateToken
		}
		return monthBoundary(y, month, boundary), nil
	}

	return time.Time{}, errBadDateToken
}

func monthBoundary(year int, month time.Month, boundary dateBoundary) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if boundary == boundaryEnd {
		return first.AddDate(0, 1, -1)
	}
	return first
}

func rangeBetween(start, end time.Time) DateRange {
	return DateRange{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s to %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006")),
	}
}
