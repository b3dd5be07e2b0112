// Package ledger reads the financial store and computes aggregates for
// resolved date ranges.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgxpool.Pool the repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository defines the read contract against the financial store. All
// sums coalesce to zero; a user with no rows is not an error.
type Repository interface {
	// SumExpenses totals expense cents in [start, end). Empty category
	// means all categories.
	SumExpenses(ctx context.Context, userID uuid.UUID, start, end time.Time, category string) (int64, error)
	// SumIncome totals income cents in [start, end).
	SumIncome(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error)
	// ExpensesByCategory returns per-category expense totals in [start, end),
	// largest first.
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]CategorySum, error)
}

// CategorySum is one per-category total.
type CategorySum struct {
	Category    string
	AmountCents int64
}

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository creates a ledger repository.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SumExpenses totals expenses for the user and window, optionally filtered
// by category.
func (r *PostgresRepository) SumExpenses(ctx context.Context, userID uuid.UUID, start, end time.Time, category string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE user_id = $1
		  AND created_at >= $2
		  AND created_at < $3
		  AND ($4 = '' OR category = $4)
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, userID, start, end, category).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// SumIncome totals income for the user and window.
func (r *PostgresRepository) SumIncome(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM incomes
		WHERE user_id = $1
		  AND received_at >= $2
		  AND received_at < $3
	`

	var total int64
	if err := r.db.QueryRow(ctx, query, userID, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum income: %w", err)
	}
	return total, nil
}

// ExpensesByCategory groups expenses by category inside the window.
func (r *PostgresRepository) ExpensesByCategory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]CategorySum, error) {
	query := `
		SELECT category, COALESCE(SUM(amount_cents), 0) AS total
		FROM expenses
		WHERE user_id = $1
		  AND created_at >= $2
		  AND created_at < $3
		GROUP BY category
		ORDER BY total DESC
	`

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var s CategorySum
		if err := rows.Scan(&s.Category, &s.AmountCents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
