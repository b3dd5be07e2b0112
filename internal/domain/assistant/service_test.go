package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saldo-app/saldo-api/internal/domain/budget"
)

func fixedClock() time.Time { return anchor }

// stubExtractor returns a fixed intent or error.
type stubExtractor struct {
	intent Intent
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, text string) (Intent, error) {
	s.calls++
	if s.err != nil {
		return Intent{}, s.err
	}
	return s.intent, nil
}

// mockAggregator records the range it was asked about.
type mockAggregator struct {
	expenses int64
	income   int64
	overview *AggregateResult
	top      *CategoryTotal
	err      error

	lastRange    DateRange
	lastCategory string
}

func (m *mockAggregator) SumExpenses(ctx context.Context, userID uuid.UUID, rng DateRange, category string) (int64, error) {
	m.lastRange, m.lastCategory = rng, category
	return m.expenses, m.err
}

func (m *mockAggregator) SumIncome(ctx context.Context, userID uuid.UUID, rng DateRange) (int64, error) {
	m.lastRange = rng
	return m.income, m.err
}

func (m *mockAggregator) Overview(ctx context.Context, userID uuid.UUID, rng DateRange) (*AggregateResult, error) {
	m.lastRange = rng
	return m.overview, m.err
}

func (m *mockAggregator) TopCategory(ctx context.Context, userID uuid.UUID, rng DateRange) (*CategoryTotal, error) {
	m.lastRange = rng
	return m.top, m.err
}

// mockBudgets serves canned budget records.
type mockBudgets struct {
	record  *budget.Record
	records []budget.Record
	err     error
}

func (m *mockBudgets) Select(ctx context.Context, userID uuid.UUID, category, period string, end time.Time) (*budget.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *mockBudgets) EligibleByPeriod(ctx context.Context, userID uuid.UUID, period string, end time.Time) ([]budget.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func newTestService(extractor IntentExtractor, agg Aggregator, budgets BudgetSelector) *Service {
	return NewService(extractor, NewRuleParser(), budgets, agg, NewComposer("EUR"), fixedClock, discardLogger())
}

func TestAnswer_SpendThisMonth(t *testing.T) {
	agg := &mockAggregator{expenses: 45000}
	svc := newTestService(nil, agg, &mockBudgets{})

	reply, err := svc.Answer(context.Background(), uuid.New(), "How much did I spend this month?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "450.00")
	assert.Equal(t, day(2025, time.October, 1), agg.lastRange.Start)
	assert.Equal(t, day(2025, time.October, 15), agg.lastRange.End)
}

func TestAnswer_CategorySpendHeuristicRange(t *testing.T) {
	agg := &mockAggregator{expenses: 120000}
	svc := newTestService(nil, agg, &mockBudgets{})

	reply, err := svc.Answer(context.Background(), uuid.New(), "How much did I spend on groceries since June?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "groceries")
	assert.Equal(t, "groceries", agg.lastCategory)
	assert.Equal(t, day(2025, time.June, 1), agg.lastRange.Start)
	assert.Equal(t, day(2025, time.October, 15), agg.lastRange.End)
}

func TestAnswer_DefaultsToThisMonth(t *testing.T) {
	agg := &mockAggregator{expenses: 100}
	svc := newTestService(nil, agg, &mockBudgets{})

	_, err := svc.Answer(context.Background(), uuid.New(), "how much did i spend")
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.October, 1), agg.lastRange.Start)
	assert.Equal(t, day(2025, time.October, 15), agg.lastRange.End)
	assert.Equal(t, "this month", agg.lastRange.Label)
}

func TestAnswer_UnknownIntentClarifies(t *testing.T) {
	svc := newTestService(nil, &mockAggregator{}, &mockBudgets{})

	reply, err := svc.Answer(context.Background(), uuid.New(), "what is the weather in lisbon")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "Try asking")
}

func TestAnswer_LLMFailureFallsBackToRules(t *testing.T) {
	extractor := &stubExtractor{err: ErrLLMUnavailable}
	agg := &mockAggregator{expenses: 5000}
	svc := newTestService(extractor, agg, &mockBudgets{})

	// The rule parser still understands the question; the user sees a
	// normal reply, never an error.
	reply, err := svc.Answer(context.Background(), uuid.New(), "how much did I spend this week?")
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.calls)
	assert.Contains(t, reply.Reply, "50.00")
	assert.Equal(t, day(2025, time.October, 13), agg.lastRange.Start)
}

func TestAnswer_MalformedLLMOutputFallsBack(t *testing.T) {
	extractor := &stubExtractor{err: ErrLLMMalformed}
	svc := newTestService(extractor, &mockAggregator{}, &mockBudgets{})

	reply, err := svc.Answer(context.Background(), uuid.New(), "how much did i earn this month")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "income")
}

func TestAnswer_ExplicitRangeWinsOverPhrases(t *testing.T) {
	start := day(2025, time.March, 1)
	end := day(2025, time.July, 31)
	extractor := &stubExtractor{intent: Intent{
		Kind:  IntentSpendInPeriod,
		Start: &start,
		End:   &end,
	}}
	agg := &mockAggregator{}
	svc := newTestService(extractor, agg, &mockBudgets{})

	// Text says "this month" but the extractor produced explicit dates.
	_, err := svc.Answer(context.Background(), uuid.New(), "spending this month")
	require.NoError(t, err)
	assert.Equal(t, start, agg.lastRange.Start)
	assert.Equal(t, end, agg.lastRange.End)
}

func TestAnswer_PeriodTokenResolvedWhenNoPhrase(t *testing.T) {
	extractor := &stubExtractor{intent: Intent{
		Kind:   IntentIncomeInPeriod,
		Period: PeriodQuarter,
	}}
	agg := &mockAggregator{}
	svc := newTestService(extractor, agg, &mockBudgets{})

	// No range phrase in the text; the extractor's period token decides.
	_, err := svc.Answer(context.Background(), uuid.New(), "my earnings recently")
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.October, 1), agg.lastRange.Start)
}

func TestAnswer_BudgetStatus(t *testing.T) {
	budgets := &mockBudgets{record: &budget.Record{
		Category:   "groceries",
		Period:     "monthly",
		LimitCents: 50000,
	}}
	agg := &mockAggregator{expenses: 42000}
	svc := newTestService(nil, agg, budgets)

	reply, err := svc.Answer(context.Background(), uuid.New(), "am I on track with my groceries budget this month?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "close to the limit")
	assert.Equal(t, "groceries", agg.lastCategory)
}

func TestAnswer_BudgetStatusNoBudget(t *testing.T) {
	budgets := &mockBudgets{err: budget.ErrNoBudget}
	svc := newTestService(nil, &mockAggregator{}, budgets)

	reply, err := svc.Answer(context.Background(), uuid.New(), "am I within my travel budget?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "no budget set")
}

func TestAnswer_HighestAndLowestBudget(t *testing.T) {
	budgets := &mockBudgets{records: []budget.Record{
		{Category: "groceries", Period: "monthly", LimitCents: 50000},
		{Category: "housing", Period: "monthly", LimitCents: 120000},
		{Category: "transport", Period: "monthly", LimitCents: 15000},
	}}
	svc := newTestService(nil, &mockAggregator{}, budgets)

	reply, err := svc.Answer(context.Background(), uuid.New(), "what is my highest budget?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "housing")

	reply, err = svc.Answer(context.Background(), uuid.New(), "what is my lowest budget?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "transport")
}

func TestAnswer_TopCategory(t *testing.T) {
	agg := &mockAggregator{top: &CategoryTotal{Category: "restaurants", AmountCents: 33000}}
	svc := newTestService(nil, agg, &mockBudgets{})

	reply, err := svc.Answer(context.Background(), uuid.New(), "where did I spend the most last month?")
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, "restaurants")
	assert.Equal(t, day(2025, time.September, 1), agg.lastRange.Start)
}

func TestAnswer_StoreErrorSurfaces(t *testing.T) {
	agg := &mockAggregator{err: errors.New("connection reset")}
	svc := newTestService(nil, agg, &mockBudgets{})

	_, err := svc.Answer(context.Background(), uuid.New(), "how much did i spend this month")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDebugRange_LadderOrder(t *testing.T) {
	svc := newTestService(nil, &mockAggregator{}, &mockBudgets{})

	// Relative phrase beats heuristic wording that is also present.
	rng := svc.DebugRange(context.Background(), "spending last month since june")
	assert.Equal(t, day(2025, time.September, 1), rng.Start)

	// Heuristic applies when no canonical phrase matches.
	rng = svc.DebugRange(context.Background(), "spending in the last 20 days")
	assert.Equal(t, day(2025, time.September, 26), rng.Start)
}

func TestDebugIntent_RulesOnly(t *testing.T) {
	svc := newTestService(nil, &mockAggregator{}, &mockBudgets{})

	intent := svc.DebugIntent(context.Background(), "how much did I earn this year?")
	assert.Equal(t, IntentIncomeInPeriod, intent.Kind)
	assert.Equal(t, PeriodYear, intent.Period)
}
