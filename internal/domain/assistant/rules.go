package assistant

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// defaultCategories is the fixed vocabulary scanned for category mentions.
// Extensible via NewRuleParser.
var defaultCategories = []string{
	"groceries",
	"transport",
	"utilities",
	"restaurants",
	"shopping",
	"subscriptions",
	"housing",
	"entertainment",
	"health",
	"travel",
	"education",
}

// intentRule is one row of the ordered rule table. The first rule whose
// trigger is contained in the text decides the intent; withCategory is used
// instead of kind when a category was extracted.
type intentRule struct {
	triggers     []string
	kind         IntentKind
	withCategory IntentKind
}

// ruleTable is evaluated top to bottom. More specific phrasings sit above
// the generic spend/income catch-alls.
var ruleTable = []intentRule{
	{
		triggers: []string{"highest budget", "biggest budget", "largest budget"},
		kind:     IntentHighestBudgetPeriod,
	},
	{
		triggers: []string{"lowest budget", "smallest budget"},
		kind:     IntentLowestBudgetPeriod,
	},
	{
		triggers:     []string{"budget", "on track", "over my limit", "within my limit"},
		kind:         IntentBudgetStatusPeriod,
		withCategory: IntentBudgetStatusCategory,
	},
	{
		triggers: []string{"top category", "biggest category", "spend the most", "spent the most", "most money on"},
		kind:     IntentTopCategoryInPeriod,
	},
	{
		triggers:     []string{"overview", "net balance", "net income", "balance", "income and expense", "income vs", "income versus"},
		kind:         IntentIncomeExpenseOverview,
		withCategory: IntentIncomeExpenseOverview,
	},
	{
		triggers: []string{"income", "earn", "salary", "did i make"},
		kind:     IntentIncomeInPeriod,
	},
	{
		triggers:     []string{"how much did i spend", "total spent", "spend", "spent", "expenses", "cost"},
		kind:         IntentSpendInPeriod,
		withCategory: IntentSpendInCategoryPeriod,
	},
}

// RuleParser is the deterministic backstop behind the LLM extractor. All
// state is built once and read-only afterwards, safe for concurrent use.
type RuleParser struct {
	categories []string
	matcher    *ahocorasick.Matcher
}

// NewRuleParser builds the parser with the default category vocabulary plus
// any extra categories the deployment defines.
func NewRuleParser(extraCategories ...string) *RuleParser {
	cats := make([]string, 0, len(defaultCategories)+len(extraCategories))
	cats = append(cats, defaultCategories...)
	for _, c := range extraCategories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cats = append(cats, c)
		}
	}

	patterns := make([][]byte, len(cats))
	for i, c := range cats {
		patterns[i] = []byte(c)
	}

	return &RuleParser{
		categories: cats,
		matcher:    ahocorasick.NewMatcher(patterns),
	}
}

// Parse matches normalized text against the rule table. It never fails:
// text with no matching rule yields IntentUnknown with no params.
func (p *RuleParser) Parse(text string) Intent {
	t := strings.ToLower(text)

	category := p.ExtractCategory(t)
	period := ExtractPeriod(t)

	for _, rule := range ruleTable {
		for _, trigger := range rule.triggers {
			if !strings.Contains(t, trigger) {
				continue
			}
			kind := rule.kind
			if category != "" && rule.withCategory != "" {
				kind = rule.withCategory
			}
			return Intent{Kind: kind, Category: category, Period: period}
		}
	}

	return Intent{Kind: IntentUnknown}
}

// ExtractCategory scans for the first vocabulary category contained in the
// text, with a fuzzy fallback for near-miss spellings ("grocceries").
func (p *RuleParser) ExtractCategory(text string) string {
	t := strings.ToLower(text)

	if hits := p.matcher.Match([]byte(t)); len(hits) > 0 {
		return p.categories[hits[0]]
	}

	// Fuzzy fallback: rank each word against the vocabulary and accept a
	// single-edit match. Short words are skipped to avoid false positives.
	for _, word := range strings.Fields(t) {
		word = strings.Trim(word, ".,?!")
		if len(word) < 5 {
			continue
		}
		for _, cat := range p.categories {
			if distance := fuzzy.LevenshteinDistance(word, cat); distance >= 0 && distance <= 1 {
				return cat
			}
		}
	}

	return ""
}

// periodWords maps phrasing to canonical tokens. "half year" must be checked
// before "year".
var periodWords = []struct {
	word  string
	token PeriodToken
}{
	{"half year", PeriodHalfYear},
	{"half-year", PeriodHalfYear},
	{"week", PeriodWeek},
	{"month", PeriodMonth},
	{"quarter", PeriodQuarter},
	{"annual", PeriodYear},
	{"year", PeriodYear},
}

// ExtractPeriod maps period words in the text to a canonical token.
// Returns "" when no period word is present.
func ExtractPeriod(text string) PeriodToken {
	t := strings.ToLower(text)
	for _, entry := range periodWords {
		if strings.Contains(t, entry.word) {
			return entry.token
		}
	}
	return ""
}
