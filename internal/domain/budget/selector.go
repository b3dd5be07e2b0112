package budget

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoBudget marks the absence of an eligible record. Not an error
// condition for the pipeline: the reply composer renders it as
// "no budget set".
var ErrNoBudget = errors.New("no matching budget")

// DefaultPeriod is assumed when the query carries no period token.
const DefaultPeriod = "monthly"

// Selector picks the applicable budget record for a query.
type Selector struct {
	repo Repository
}

// NewSelector creates a budget selector.
func NewSelector(repo Repository) *Selector {
	return &Selector{repo: repo}
}

// Select returns the budget for the exact category and period whose
// creation timestamp is the latest at or before end. Records created after
// the resolved range end are never eligible.
func (s *Selector) Select(ctx context.Context, userID uuid.UUID, category, period string, end time.Time) (*Record, error) {
	if period == "" {
		period = DefaultPeriod
	}
	category = strings.ToLower(strings.TrimSpace(category))

	records, err := s.repo.ListByUser(ctx, userID, category, period)
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first; the first record not created after end wins.
	for i := range records {
		if !records[i].CreatedAt.After(end) {
			return &records[i], nil
		}
	}

	return nil, ErrNoBudget
}

// EligibleByPeriod returns every budget of the given period created at or
// before end, for highest/lowest budget queries. Period defaults to monthly.
func (s *Selector) EligibleByPeriod(ctx context.Context, userID uuid.UUID, period string, end time.Time) ([]Record, error) {
	if period == "" {
		period = DefaultPeriod
	}

	records, err := s.repo.ListByUser(ctx, userID, "", period)
	if err != nil {
		return nil, err
	}

	// Keep the newest eligible record per category.
	seen := make(map[string]struct{}, len(records))
	eligible := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.CreatedAt.After(end) {
			continue
		}
		if _, dup := seen[rec.Category]; dup {
			continue
		}
		seen[rec.Category] = struct{}{}
		eligible = append(eligible, rec)
	}

	if len(eligible) == 0 {
		return nil, ErrNoBudget
	}
	return eligible, nil
}
