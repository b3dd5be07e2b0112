package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByUser_ScansRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	id1, id2 := uuid.New(), uuid.New()
	notes := "tight month"
	created1 := time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)
	created2 := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, user_id, category, period, limit_cents, notes, created_at`).
		WithArgs(userID, "groceries", "monthly").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "category", "period", "limit_cents", "notes", "created_at",
		}).
			AddRow(id1, userID, "groceries", "monthly", int64(50000), &notes, created1).
			AddRow(id2, userID, "groceries", "monthly", int64(40000), nil, created2))

	repo := NewPostgresRepository(mock)
	records, err := repo.ListByUser(context.Background(), userID, "groceries", "monthly")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, id1, records[0].ID)
	assert.Equal(t, int64(50000), records[0].LimitCents)
	require.NotNil(t, records[0].Notes)
	assert.Equal(t, "tight month", *records[0].Notes)
	assert.Nil(t, records[1].Notes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_EmptyFiltersPassedThrough(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()

	mock.ExpectQuery(`FROM budgets`).
		WithArgs(userID, "", "monthly").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "category", "period", "limit_cents", "notes", "created_at",
		}))

	repo := NewPostgresRepository(mock)
	records, err := repo.ListByUser(context.Background(), userID, "", "monthly")
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	u1, u2 := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT DISTINCT user_id FROM budgets`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(u1).AddRow(u2))

	repo := NewPostgresRepository(mock)
	ids, err := repo.ListUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u1, u2}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}
