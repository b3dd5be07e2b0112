// Package budget selects the applicable budget record for a category and
// period. Budget CRUD lives elsewhere; this package only reads.
package budget

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
}

// Record is a stored spending limit for a category and period.
type Record struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Category   string
	Period     string // 'weekly', 'monthly', 'quarterly', 'half-yearly', 'yearly'
	LimitCents int64
	Notes      *string
	CreatedAt  time.Time
}

// Repository defines read access to budget records.
type Repository interface {
	// ListByUser returns the user's budgets, newest first. Empty category
	// or period means no filter on that column.
	ListByUser(ctx context.Context, userID uuid.UUID, category, period string) ([]Record, error)
	// ListUserIDs returns every user with at least one budget, for the
	// alert sweep.
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PostgresRepository implements Repository over pgx.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository creates a budget repository.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns budgets ordered by created_at DESC, id DESC. The
// secondary id sort keeps selection deterministic when creation timestamps
// collide.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, category, period string) ([]Record, error) {
	query := `
		SELECT id, user_id, category, period, limit_cents, notes, created_at
		FROM budgets
		WHERE user_id = $1
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR period = $3)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, userID, category, period)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListUserIDs returns distinct users owning budgets.
func (r *PostgresRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("list budget users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Category,
			&rec.Period,
			&rec.LimitCents,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
