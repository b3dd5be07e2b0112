// Package alerts evaluates budget usage against the alerting bands.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/saldo-app/saldo-api/internal/domain/assistant"
	"github.com/saldo-app/saldo-api/internal/domain/budget"
)

// Level classifies budget usage. Bands match the assistant's wording.
type Level string

const (
	LevelNone     Level = "none"
	LevelHalf     Level = "half_limit"     // >= 50%
	LevelNear     Level = "near_limit"     // >= 80%, including exactly at the limit
	LevelExceeded Level = "limit_exceeded" // > 100%
)

var alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "saldo_budget_alerts_total",
	Help: "Budget alerts raised by the sweep, by level.",
}, []string{"level"})

// Alert is one triggered budget alert.
type Alert struct {
	UserID   uuid.UUID
	Category string
	Period   string
	Level    Level
	UsedPct  float64
}

// Service sweeps budgets and classifies their usage.
type Service struct {
	budgets budget.Repository
	ledger  ledgerReader
	clock   func() time.Time
	logger  *slog.Logger
}

type ledgerReader interface {
	SumExpenses(ctx context.Context, userID uuid.UUID, start, end time.Time, category string) (int64, error)
}

// NewService creates the alert sweep service. clock is injectable for
// deterministic tests; pass nil for time.Now.
func NewService(budgets budget.Repository, ledger ledgerReader, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{budgets: budgets, ledger: ledger, clock: clock, logger: logger}
}

// Classify maps a usage fraction onto an alert level.
func Classify(used float64) Level {
	switch {
	case used > assistant.BandExceeded:
		return LevelExceeded
	case used >= assistant.BandNear:
		return LevelNear
	case used >= assistant.BandHalf:
		return LevelHalf
	default:
		return LevelNone
	}
}

// Sweep evaluates every budget of every user against its current period
// window and returns the triggered alerts. Store errors on one user do not
// stop the sweep.
func (s *Service) Sweep(ctx context.Context) ([]Alert, error) {
	userIDs, err := s.budgets.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var triggered []Alert

	for _, userID := range userIDs {
		alerts, err := s.sweepUser(ctx, userID, now)
		if err != nil {
			s.logger.Warn("budget sweep failed for user",
				slog.String("user_id", userID.String()),
				slog.Any("error", err),
			)
			continue
		}
		triggered = append(triggered, alerts...)
	}

	return triggered, nil
}

func (s *Service) sweepUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]Alert, error) {
	records, err := s.budgets.ListByUser(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first; only the newest budget per category and
	// period is live, matching query-time selection.
	type key struct{ category, period string }
	seen := make(map[key]struct{}, len(records))

	var alerts []Alert
	for _, rec := range records {
		k := key{rec.Category, rec.Period}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		window := assistant.PeriodWindow(periodToken(rec.Period), now)

		spent, err := s.ledger.SumExpenses(ctx, userID, window.Start, window.EndExclusive(), rec.Category)
		if err != nil {
			return nil, err
		}
		if rec.LimitCents <= 0 {
			continue
		}

		used := float64(spent) / float64(rec.LimitCents)
		level := Classify(used)
		if level == LevelNone {
			continue
		}

		alert := Alert{
			UserID:   userID,
			Category: rec.Category,
			Period:   rec.Period,
			Level:    level,
			UsedPct:  used * 100,
		}
		alerts = append(alerts, alert)
		alertsTotal.WithLabelValues(string(level)).Inc()
		s.logger.Info("budget alert",
			slog.String("user_id", userID.String()),
			slog.String("category", rec.Category),
			slog.String("period", rec.Period),
			slog.String("level", string(level)),
			slog.Float64("used_pct", alert.UsedPct),
		)
	}

	return alerts, nil
}

// periodToken converts a stored budget period back to the canonical token.
func periodToken(period string) assistant.PeriodToken {
	switch period {
	case "weekly":
		return assistant.PeriodWeek
	case "quarterly":
		return assistant.PeriodQuarter
	case "half-yearly":
		return assistant.PeriodHalfYear
	case "yearly":
		return assistant.PeriodYear
	default:
		return assistant.PeriodMonth
	}
}
