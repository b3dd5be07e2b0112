package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saldo-app/saldo-api/internal/domain/budget"
)

// IntentExtractor is the LLM side of extraction. Nil-able: a deployment
// without a model key runs on the rule parser alone.
type IntentExtractor interface {
	Extract(ctx context.Context, text string) (Intent, error)
}

// Aggregator is the read contract the orchestrator needs from the
// aggregation engine.
type Aggregator interface {
	SumExpenses(ctx context.Context, userID uuid.UUID, rng DateRange, category string) (int64, error)
	SumIncome(ctx context.Context, userID uuid.UUID, rng DateRange) (int64, error)
	Overview(ctx context.Context, userID uuid.UUID, rng DateRange) (*AggregateResult, error)
	TopCategory(ctx context.Context, userID uuid.UUID, rng DateRange) (*CategoryTotal, error)
}

// BudgetSelector picks budget records for status and extreme queries.
type BudgetSelector interface {
	Select(ctx context.Context, userID uuid.UUID, category, period string, end time.Time) (*budget.Record, error)
	EligibleByPeriod(ctx context.Context, userID uuid.UUID, period string, end time.Time) ([]budget.Record, error)
}

// Service is the orchestrator: it sequences extraction, range resolution,
// aggregation, and composition into one reply. Stateless across requests;
// safe for concurrent use.
type Service struct {
	extractor IntentExtractor // nil disables the LLM rung
	rules     *RuleParser
	budgets   BudgetSelector
	aggregate Aggregator
	composer  *Composer
	clock     func() time.Time
	logger    *slog.Logger
}

// NewService wires the pipeline. clock is injectable for deterministic
// tests; pass nil for time.Now.
func NewService(
	extractor IntentExtractor,
	rules *RuleParser,
	budgets BudgetSelector,
	aggregate Aggregator,
	composer *Composer,
	clock func() time.Time,
	logger *slog.Logger,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		extractor: extractor,
		rules:     rules,
		budgets:   budgets,
		aggregate: aggregate,
		composer:  composer,
		clock:     clock,
		logger:    logger,
	}
}

// Answer interprets the question and produces a grounded reply. The only
// errors returned are store failures; every interpretation problem resolves
// to a well-formed reply.
func (s *Service) Answer(ctx context.Context, userID uuid.UUID, text string) (Reply, error) {
	query := NewQuery(text, s.clock())

	intent := s.extractIntent(ctx, query)
	requestsTotal.WithLabelValues(string(intent.Kind)).Inc()

	if intent.Kind == IntentUnknown {
		return s.composer.Clarify(), nil
	}

	rng := s.resolveRange(intent, query)

	reply, err := s.dispatch(ctx, userID, intent, rng)
	if err != nil {
		return Reply{}, fmt.Errorf("answer %q: %w", intent.Kind, err)
	}
	return reply, nil
}

// DebugIntent runs extraction only, for test harnesses and diagnosis.
func (s *Service) DebugIntent(ctx context.Context, text string) Intent {
	return s.extractIntent(ctx, NewQuery(text, s.clock()))
}

// DebugRange runs extraction and range resolution only.
func (s *Service) DebugRange(ctx context.Context, text string) DateRange {
	query := NewQuery(text, s.clock())
	return s.resolveRange(s.extractIntent(ctx, query), query)
}

// extractIntent tries the LLM extractor once and falls back to the rule
// parser on any failure. No partial state survives a fallback.
func (s *Service) extractIntent(ctx context.Context, query Query) Intent {
	if s.extractor != nil {
		intent, err := s.extractor.Extract(ctx, query.Raw)
		if err == nil {
			return intent
		}
		llmFailuresTotal.WithLabelValues(llmFailureReason(err)).Inc()
		s.logger.Warn("llm extraction failed, using rule parser",
			slog.String("reason", llmFailureReason(err)),
			slog.Any("error", err),
		)
	}
	return s.rules.Parse(query.Normalized)
}

// resolveRange walks the precedence ladder: explicit extractor range,
// canonical relative phrase, heuristic phrase, then this month. The
// pipeline always terminates with a concrete range.
func (s *Service) resolveRange(intent Intent, query Query) DateRange {
	if intent.HasExplicitRange() {
		rangeSourceTotal.WithLabelValues("explicit").Inc()
		start := dateOf(*intent.Start)
		end := dateOf(*intent.End)
		return rangeBetween(start, end)
	}

	if rng, ok := ResolveRelative(query.Normalized, query.Now); ok {
		rangeSourceTotal.WithLabelValues("relative").Inc()
		return rng
	}

	if rng, ok := ResolveHeuristic(query.Normalized, query.Now); ok {
		rangeSourceTotal.WithLabelValues("heuristic").Inc()
		return rng
	}

	// When the extractor named a period without dates ("last quarter" via
	// the LLM), resolve that token before defaulting.
	if intent.Period != "" {
		rangeSourceTotal.WithLabelValues("period_token").Inc()
		return ResolveSpec(PeriodSpec{Token: intent.Period}, query.Now)
	}

	rangeSourceTotal.WithLabelValues("default").Inc()
	return ResolveSpec(PeriodSpec{Token: PeriodMonth}, query.Now)
}

// dispatch runs the intent's aggregation and composes the reply.
// Exhaustive over the closed intent set.
func (s *Service) dispatch(ctx context.Context, userID uuid.UUID, intent Intent, rng DateRange) (Reply, error) {
	switch intent.Kind {
	case IntentSpendInPeriod:
		spent, err := s.aggregate.SumExpenses(ctx, userID, rng, "")
		if err != nil {
			return Reply{}, err
		}
		return s.composer.Spend(rng, spent), nil

	case IntentSpendInCategoryPeriod:
		if intent.Category == "" {
			return s.composer.Clarify(), nil
		}
		spent, err := s.aggregate.SumExpenses(ctx, userID, rng, intent.Category)
		if err != nil {
			return Reply{}, err
		}
		return s.composer.CategorySpend(rng, intent.Category, spent), nil

	case IntentIncomeInPeriod:
		income, err := s.aggregate.SumIncome(ctx, userID, rng)
		if err != nil {
			return Reply{}, err
		}
		return s.composer.Income(rng, income), nil

	case IntentIncomeExpenseOverview:
		result, err := s.aggregate.Overview(ctx, userID, rng)
		if err != nil {
			return Reply{}, err
		}
		return s.composer.Overview(rng, result), nil

	case IntentBudgetStatusCategory, IntentBudgetStatusPeriod:
		return s.budgetStatus(ctx, userID, intent, rng)

	case IntentHighestBudgetPeriod, IntentLowestBudgetPeriod:
		return s.budgetExtreme(ctx, userID, intent, rng)

	case IntentTopCategoryInPeriod:
		top, err := s.aggregate.TopCategory(ctx, userID, rng)
		if err != nil {
			return Reply{}, err
		}
		return s.composer.TopCategory(rng, top), nil

	case IntentUnknown:
		return s.composer.Clarify(), nil
	}

	// Unreachable while the intent set stays closed.
	return s.composer.Clarify(), nil
}

// budgetStatus selects the applicable budget and reports usage over the
// budget period's current window.
func (s *Service) budgetStatus(ctx context.Context, userID uuid.UUID, intent Intent, rng DateRange) (Reply, error) {
	period := intent.Period.BudgetPeriod()

	rec, err := s.budgets.Select(ctx, userID, intent.Category, period, rng.End)
	if errors.Is(err, budget.ErrNoBudget) {
		return s.composer.NoBudget(intent.Category), nil
	}
	if err != nil {
		return Reply{}, err
	}

	spent, err := s.aggregate.SumExpenses(ctx, userID, rng, rec.Category)
	if err != nil {
		return Reply{}, err
	}
	return s.composer.BudgetStatus(rng, rec, spent), nil
}

// budgetExtreme answers highest/lowest budget queries over records
// eligible at the range end.
func (s *Service) budgetExtreme(ctx context.Context, userID uuid.UUID, intent Intent, rng DateRange) (Reply, error) {
	period := intent.Period.BudgetPeriod()

	records, err := s.budgets.EligibleByPeriod(ctx, userID, period, rng.End)
	if errors.Is(err, budget.ErrNoBudget) {
		return s.composer.NoBudget(""), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if len(records) == 0 {
		return s.composer.NoBudget(""), nil
	}

	highest := intent.Kind == IntentHighestBudgetPeriod
	pick := &records[0]
	for i := 1; i < len(records); i++ {
		rec := &records[i]
		if highest && rec.LimitCents > pick.LimitCents {
			pick = rec
		}
		if !highest && rec.LimitCents < pick.LimitCents {
			pick = rec
		}
	}
	return s.composer.BudgetExtreme(rng, pick, highest), nil
}

func llmFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrLLMUnavailable):
		return "unavailable"
	case errors.Is(err, ErrLLMMalformed):
		return "malformed"
	case errors.Is(err, ErrLLMUnsupported):
		return "unsupported"
	default:
		return "other"
	}
}
