package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saldo-app/saldo-api/internal/domain/assistant"
	"github.com/saldo-app/saldo-api/internal/domain/budget"
)

var testNow = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

// stubAggregator returns fixed totals.
type stubAggregator struct {
	expenses int64
	income   int64
}

func (s *stubAggregator) SumExpenses(ctx context.Context, userID uuid.UUID, rng assistant.DateRange, category string) (int64, error) {
	return s.expenses, nil
}

func (s *stubAggregator) SumIncome(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (int64, error) {
	return s.income, nil
}

func (s *stubAggregator) Overview(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (*assistant.AggregateResult, error) {
	return &assistant.AggregateResult{IncomeCents: s.income, ExpenseCents: s.expenses, NetCents: s.income - s.expenses}, nil
}

func (s *stubAggregator) TopCategory(ctx context.Context, userID uuid.UUID, rng assistant.DateRange) (*assistant.CategoryTotal, error) {
	return nil, nil
}

// stubBudgets never finds a budget.
type stubBudgets struct{}

func (stubBudgets) Select(ctx context.Context, userID uuid.UUID, category, period string, end time.Time) (*budget.Record, error) {
	return nil, budget.ErrNoBudget
}

func (stubBudgets) EligibleByPeriod(ctx context.Context, userID uuid.UUID, period string, end time.Time) ([]budget.Record, error) {
	return nil, budget.ErrNoBudget
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := assistant.NewService(
		nil,
		assistant.NewRuleParser(),
		stubBudgets{},
		&stubAggregator{expenses: 48250, income: 300000},
		assistant.NewComposer("EUR"),
		func() time.Time { return testNow },
		logger,
	)

	router := gin.New()
	v1 := router.Group("/v1")
	NewAssistantHandler(svc, logger).RegisterRoutes(v1)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnswerEndpoint(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodPost, "/v1/assistant", uuid.NewString(),
		`{"message": "how much did I spend this month?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Reply, "482.50")
	assert.Contains(t, reply.Reply, "this month")
	require.Len(t, reply.Actions, 1)
	assert.Equal(t, "navigate", reply.Actions[0].Type)
}

func TestAnswerEndpoint_MissingUserHeader(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodPost, "/v1/assistant", "",
		`{"message": "how much did I spend?"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnswerEndpoint_BadUserHeader(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodPost, "/v1/assistant", "not-a-uuid",
		`{"message": "how much did I spend?"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnswerEndpoint_MissingMessage(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodPost, "/v1/assistant", uuid.NewString(), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerEndpoint_UnintelligibleTextStillReplies(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodPost, "/v1/assistant", uuid.NewString(),
		`{"message": "purple monkey dishwasher"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Reply, "Try asking")
}

func TestDebugIntentEndpoint(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodGet,
		"/v1/assistant/debug/intent?q=how+much+did+i+spend+on+groceries+last+month", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "spend_in_category_period", body["intent"])
	assert.Equal(t, "groceries", body["category"])
	assert.Equal(t, "month", body["period"])
}

func TestDebugRangeEndpoint(t *testing.T) {
	router := testRouter()

	w := doRequest(t, router, http.MethodGet, "/v1/assistant/debug/range?q=since+june", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-01", body["start"])
	assert.Equal(t, "2025-10-15", body["end"])
}

func TestDebugEndpoints_RequireQuery(t *testing.T) {
	router := testRouter()

	assert.Equal(t, http.StatusBadRequest,
		doRequest(t, router, http.MethodGet, "/v1/assistant/debug/intent", "", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		doRequest(t, router, http.MethodGet, "/v1/assistant/debug/range", "", "").Code)
}
