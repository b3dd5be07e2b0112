package assistant

import (
	"strings"
	"time"
)

// PeriodSpec is a canonical relative phrase: {this,last} x period token.
type PeriodSpec struct {
	Token PeriodToken
	Last  bool
}

// relativePhrases maps canonical phrases to specs, in scan order. Longer
// phrases come first so "last half year" is not shadowed by "last year".
var relativePhrases = []struct {
	phrase string
	spec   PeriodSpec
}{
	{"this half year", PeriodSpec{PeriodHalfYear, false}},
	{"last half year", PeriodSpec{PeriodHalfYear, true}},
	{"this half-year", PeriodSpec{PeriodHalfYear, false}},
	{"last half-year", PeriodSpec{PeriodHalfYear, true}},
	{"this week", PeriodSpec{PeriodWeek, false}},
	{"last week", PeriodSpec{PeriodWeek, true}},
	{"this month", PeriodSpec{PeriodMonth, false}},
	{"last month", PeriodSpec{PeriodMonth, true}},
	{"this quarter", PeriodSpec{PeriodQuarter, false}},
	{"last quarter", PeriodSpec{PeriodQuarter, true}},
	{"this year", PeriodSpec{PeriodYear, false}},
	{"last year", PeriodSpec{PeriodYear, true}},
}

// ResolveRelative maps a canonical relative phrase contained in text to an
// absolute range anchored at now. Returns false when no phrase is present.
func ResolveRelative(text string, now time.Time) (DateRange, bool) {
	t := strings.ToLower(text)
	for _, entry := range relativePhrases {
		if strings.Contains(t, entry.phrase) {
			return ResolveSpec(entry.spec, now), true
		}
	}
	return DateRange{}, false
}

// ResolveSpec computes the absolute range for a period spec. Pure and
// deterministic given now; operates on calendar dates so any instant within
// the same day yields an identical range.
func ResolveSpec(spec PeriodSpec, now time.Time) DateRange {
	today := dateOf(now)

	var start, end time.Time
	switch spec.Token {
	case PeriodWeek:
		start = weekStart(today)
		end = today
		if spec.Last {
			end = start.AddDate(0, 0, -1)
			start = start.AddDate(0, 0, -7)
		}
	case PeriodMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = today
		if spec.Last {
			start = start.AddDate(0, -1, 0)
			end = start.AddDate(0, 1, -1)
		}
	case PeriodQuarter:
		q := (int(today.Month()) - 1) / 3 // 0..3
		start = time.Date(today.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		end = today
		if spec.Last {
			start = start.AddDate(0, -3, 0)
			end = start.AddDate(0, 3, -1)
		}
	case PeriodHalfYear:
		m := time.January
		if today.Month() >= time.July {
			m = time.July
		}
		start = time.Date(today.Year(), m, 1, 0, 0, 0, 0, time.UTC)
		end = today
		if spec.Last {
			start = start.AddDate(0, -6, 0)
			end = start.AddDate(0, 6, -1)
		}
	case PeriodYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = today
		if spec.Last {
			start = start.AddDate(-1, 0, 0)
			end = time.Date(start.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		}
	default:
		// Unrecognized tokens fall back to this month.
		return ResolveSpec(PeriodSpec{Token: PeriodMonth}, now)
	}

	return DateRange{Start: start, End: end, Label: spec.label()}
}

// PeriodWindow returns the current window for a token ("this X"), used for
// budget usage and the alert sweep.
func PeriodWindow(token PeriodToken, now time.Time) DateRange {
	return ResolveSpec(PeriodSpec{Token: token}, now)
}

func (s PeriodSpec) label() string {
	word := strings.ReplaceAll(string(s.Token), "_", " ")
	if s.Last {
		return "last " + word
	}
	return "this " + word
}

// dateOf truncates an instant to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday of the week containing d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Mon=0 .. Sun=6
	return d.AddDate(0, 0, -offset)
}
