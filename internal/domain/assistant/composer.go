package assistant

import (
	"fmt"

	"github.com/saldo-app/saldo-api/internal/domain/budget"
	"github.com/saldo-app/saldo-api/pkg/money"
)

// Budget usage bands, aligned with the alerting thresholds.
const (
	BandHalf     = 0.5
	BandNear     = 0.8
	BandExceeded = 1.0
)

// Composer renders final replies. Pure: same inputs, same sentence.
type Composer struct {
	currency string
}

// NewComposer creates a composer rendering amounts in the given ISO-4217
// currency.
func NewComposer(currency string) *Composer {
	return &Composer{currency: currency}
}

func (c *Composer) amount(cents int64) string {
	return money.New(cents, c.currency).Display()
}

// Spend renders a total-spend answer for the range.
func (c *Composer) Spend(rng DateRange, spentCents int64) Reply {
	return Reply{
		Reply: fmt.Sprintf("You spent %s in %s.", c.amount(spentCents), rng.Label),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "See expenses",
			Params: map[string]string{"route": "/expenses", "period": rng.Label},
		}},
	}
}

// CategorySpend renders a per-category spend answer.
func (c *Composer) CategorySpend(rng DateRange, category string, spentCents int64) Reply {
	return Reply{
		Reply: fmt.Sprintf("You spent %s on %s in %s.", c.amount(spentCents), category, rng.Label),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "See expenses",
			Params: map[string]string{"route": "/expenses", "period": rng.Label, "category": category},
		}},
	}
}

// Income renders a total-income answer.
func (c *Composer) Income(rng DateRange, incomeCents int64) Reply {
	return Reply{
		Reply: fmt.Sprintf("You received %s in income in %s.", c.amount(incomeCents), rng.Label),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "See income",
			Params: map[string]string{"route": "/income", "period": rng.Label},
		}},
	}
}

// Overview renders income, expenses, and net balance for the range.
func (c *Composer) Overview(rng DateRange, result *AggregateResult) Reply {
	return Reply{
		Reply: fmt.Sprintf(
			"For %s, income is %s, expenses are %s, net is %s.",
			rng.Label, c.amount(result.IncomeCents), c.amount(result.ExpenseCents), c.amount(result.NetCents),
		),
		Actions: []Action{{
			Type:   "show_chart",
			Label:  "Show income vs expenses",
			Params: map[string]string{"period": rng.Label},
		}},
	}
}

// BudgetStatus renders how much of a budget has been used, worded by the
// 50% / 80% / 100% bands.
func (c *Composer) BudgetStatus(rng DateRange, rec *budget.Record, spentCents int64) Reply {
	limit := money.New(rec.LimitCents, c.currency)
	spent := money.New(spentCents, c.currency)
	used := spent.PercentageOf(limit).InexactFloat64()
	percent := used * 100

	var status string
	switch {
	case used > BandExceeded:
		status = fmt.Sprintf("you've exceeded it by %s", c.amount(spentCents-rec.LimitCents))
	case used >= BandNear:
		status = "you're close to the limit"
	case used >= BandHalf:
		status = "you're past the halfway mark"
	default:
		status = "you're on track"
	}

	return Reply{
		Reply: fmt.Sprintf(
			"Your %s %s budget is %s and you've spent %s in %s (%.0f%%), so %s.",
			rec.Category, rec.Period, limit.Display(), spent.Display(), rng.Label, percent, status,
		),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "See budgets",
			Params: map[string]string{"route": "/budgets", "category": rec.Category},
		}},
	}
}

// NoBudget renders the informational no-budget-set reply.
func (c *Composer) NoBudget(category string) Reply {
	subject := "that period"
	if category != "" {
		subject = category
	}
	return Reply{
		Reply: fmt.Sprintf("You have no budget set for %s.", subject),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "Create a budget",
			Params: map[string]string{"route": "/budgets/new"},
		}},
	}
}

// BudgetExtreme renders the highest or lowest budget answer.
func (c *Composer) BudgetExtreme(rng DateRange, rec *budget.Record, highest bool) Reply {
	word := "highest"
	if !highest {
		word = "lowest"
	}
	return Reply{
		Reply: fmt.Sprintf(
			"Your %s %s budget is %s for %s.",
			word, rec.Period, c.amount(rec.LimitCents), rec.Category,
		),
		Actions: []Action{{
			Type:   "navigate",
			Label:  "See budgets",
			Params: map[string]string{"route": "/budgets"},
		}},
	}
}

// TopCategory renders the biggest spending category for the range.
func (c *Composer) TopCategory(rng DateRange, top *CategoryTotal) Reply {
	if top == nil {
		return Reply{
			Reply:   fmt.Sprintf("You have no expenses recorded in %s.", rng.Label),
			Actions: []Action{},
		}
	}
	return Reply{
		Reply: fmt.Sprintf(
			"Your biggest spending category in %s is %s at %s.",
			rng.Label, top.Category, c.amount(top.AmountCents),
		),
		Actions: []Action{{
			Type:   "show_chart",
			Label:  "Show category breakdown",
			Params: map[string]string{"period": rng.Label},
		}},
	}
}

// Clarify asks the user to rephrase. The worst-case pipeline outcome.
func (c *Composer) Clarify() Reply {
	return Reply{
		Reply:   `I didn't quite get that. Try asking: "How much did I spend on groceries last month?"`,
		Actions: []Action{},
	}
}
