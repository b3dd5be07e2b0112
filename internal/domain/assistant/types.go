// Package assistant implements the natural-language query pipeline: intent
// extraction, date-range resolution, aggregation dispatch, and reply
// composition.
package assistant

import (
	"strings"
	"time"
)

// PeriodToken is the canonical granularity used for relative-phrase
// resolution and budget matching.
type PeriodToken string

const (
	PeriodWeek     PeriodToken = "week"
	PeriodMonth    PeriodToken = "month"
	PeriodQuarter  PeriodToken = "quarter"
	PeriodHalfYear PeriodToken = "half_year"
	PeriodYear     PeriodToken = "year"
)

// BudgetPeriod maps a canonical token to the budget store's period column.
func (p PeriodToken) BudgetPeriod() string {
	switch p {
	case PeriodWeek:
		return "weekly"
	case PeriodMonth:
		return "monthly"
	case PeriodQuarter:
		return "quarterly"
	case PeriodHalfYear:
		return "half-yearly"
	case PeriodYear:
		return "yearly"
	default:
		return "monthly"
	}
}

// IntentKind is the classified type of financial question a query represents.
type IntentKind string

const (
	IntentSpendInPeriod         IntentKind = "spend_in_period"
	IntentSpendInCategoryPeriod IntentKind = "spend_in_category_period"
	IntentIncomeInPeriod        IntentKind = "income_in_period"
	IntentIncomeExpenseOverview IntentKind = "income_expense_overview_period"
	IntentBudgetStatusCategory  IntentKind = "budget_status_category_period"
	IntentBudgetStatusPeriod    IntentKind = "budget_status_period"
	IntentHighestBudgetPeriod   IntentKind = "highest_budget_period"
	IntentLowestBudgetPeriod    IntentKind = "lowest_budget_period"
	IntentTopCategoryInPeriod   IntentKind = "top_category_in_period"
	IntentUnknown               IntentKind = "unknown"
)

// allIntentKinds is the closed set accepted from any extractor.
var allIntentKinds = map[IntentKind]struct{}{
	IntentSpendInPeriod:         {},
	IntentSpendInCategoryPeriod: {},
	IntentIncomeInPeriod:        {},
	IntentIncomeExpenseOverview: {},
	IntentBudgetStatusCategory:  {},
	IntentBudgetStatusPeriod:    {},
	IntentHighestBudgetPeriod:   {},
	IntentLowestBudgetPeriod:    {},
	IntentTopCategoryInPeriod:   {},
	IntentUnknown:               {},
}

// ValidIntentKind reports whether k belongs to the closed intent set.
func ValidIntentKind(k IntentKind) bool {
	_, ok := allIntentKinds[k]
	return ok
}

// Intent is the structured interpretation of a query: a kind plus the
// optional parameters an extractor filled in.
type Intent struct {
	Kind     IntentKind
	Category string      // normalized category name, "" when absent
	Period   PeriodToken // canonical period token, "" when absent

	// Explicit range supplied by an extractor. When both are set they take
	// precedence over every range resolver.
	Start *time.Time
	End   *time.Time
}

// HasExplicitRange reports whether the extractor supplied both bounds.
func (i Intent) HasExplicitRange() bool {
	return i.Start != nil && i.End != nil
}

// Query is one user request. Immutable once constructed; Now anchors all
// relative-phrase resolution for the request.
type Query struct {
	Raw        string
	Normalized string
	Now        time.Time
}

// NewQuery normalizes the raw text and pins the request timestamp.
func NewQuery(raw string, now time.Time) Query {
	return Query{
		Raw:        raw,
		Normalized: strings.Join(strings.Fields(strings.ToLower(raw)), " "),
		Now:        now.UTC(),
	}
}

// DateRange is an inclusive calendar-day window in UTC.
// Start and End are midnight instants; End names the last included day.
type DateRange struct {
	Start time.Time
	End   time.Time
	Label string
}

// EndExclusive returns the first instant after the range, for use in
// timestamp filters (created_at >= Start AND created_at < EndExclusive).
func (r DateRange) EndExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Contains reports whether the instant falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.Start) && t.Before(r.EndExclusive())
}

// CategoryTotal is one row of a per-category expense breakdown.
type CategoryTotal struct {
	Category    string
	AmountCents int64
}

// AggregateResult holds the computed figures for a resolved range.
type AggregateResult struct {
	IncomeCents  int64
	ExpenseCents int64
	NetCents     int64 // income - expense, sign preserved
	ByCategory   []CategoryTotal
}

// Action is a suggested follow-up rendered with a reply. Labels only,
// nothing is executed.
type Action struct {
	Type   string            `json:"type"` // "navigate" or "show_chart"
	Label  string            `json:"label"`
	Params map[string]string `json:"params,omitempty"`
}

// Reply is the final assistant answer.
type Reply struct {
	Reply   string   `json:"reply"`
	Actions []Action `json:"actions"`
}
