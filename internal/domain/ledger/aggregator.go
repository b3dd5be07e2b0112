package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/saldo-app/saldo-api/internal/domain/assistant"
)

// Aggregator computes the figures the assistant's replies are grounded on.
// It satisfies assistant.Aggregator. Store errors propagate: there is no
// local fallback for missing source data.
type Aggregator struct {
	repo Repository
}

// NewAggregator creates an aggregation engine over the financial store.
func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// SumExpenses totals expense cents over the range, optionally per category.
func (a *Aggregator) SumExpenses(ctx context.Context, userID uuid.UUID, rng assistant.DateRange, category string) (int64, error) {
	return a.repo.SumExpenses(ctx, userID, rng.Start, rng.EndExclusive(), category)
}

// SumIncome totals income cents over the range.
func (a *Aggregator) SumIncome(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (int64, error) {
	return a.repo.SumIncome(ctx, userID, rng.Start, rng.EndExclusive())
}

// Overview computes income, expense, net balance (sign preserved), and the
// per-category breakdown for the range.
func (a *Aggregator) Overview(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (*assistant.AggregateResult, error) {
	income, err := a.repo.SumIncome(ctx, userID, rng.Start, rng.EndExclusive())
	if err != nil {
		return nil, err
	}
	expense, err := a.repo.SumExpenses(ctx, userID, rng.Start, rng.EndExclusive(), "")
	if err != nil {
		return nil, err
	}
	breakdown, err := a.repo.ExpensesByCategory(ctx, userID, rng.Start, rng.EndExclusive())
	if err != nil {
		return nil, err
	}

	result := &assistant.AggregateResult{
		IncomeCents:  income,
		ExpenseCents: expense,
		NetCents:     income - expense,
		ByCategory:   make([]assistant.CategoryTotal, 0, len(breakdown)),
	}
	for _, row := range breakdown {
		result.ByCategory = append(result.ByCategory, assistant.CategoryTotal{
			Category:    row.Category,
			AmountCents: row.AmountCents,
		})
	}
	return result, nil
}

// TopCategory returns the category with the largest expense total in the
// range, or nil when the range holds no expenses.
func (a *Aggregator) TopCategory(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (*assistant.CategoryTotal, error) {
	breakdown, err := a.repo.ExpensesByCategory(ctx, userID, rng.Start, rng.EndExclusive())
	if err != nil {
		return nil, err
	}
	if len(breakdown) == 0 {
		return nil, nil
	}

	// Rows arrive largest first.
	top := assistant.CategoryTotal{
		Category:    breakdown[0].Category,
		AmountCents: breakdown[0].AmountCents,
	}
	return &top, nil
}
