package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns a fixed response or error.
type stubCompleter struct {
	response string
	err      error
	prompt   string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractor_ParsesWellFormedOutput(t *testing.T) {
	completer := &stubCompleter{
		response: `{"intent": "spend_in_category_period", "category": "Groceries", "period": "month", "start": "", "end": ""}`,
	}
	e := NewExtractor(completer, time.Second, discardLogger())

	intent, err := e.Extract(context.Background(), "how much on groceries this month?")
	require.NoError(t, err)
	assert.Equal(t, IntentSpendInCategoryPeriod, intent.Kind)
	assert.Equal(t, "groceries", intent.Category)
	assert.Equal(t, PeriodMonth, intent.Period)
	assert.False(t, intent.HasExplicitRange())
	assert.Contains(t, completer.prompt, "how much on groceries this month?")
}

func TestExtractor_StripsCodeFences(t *testing.T) {
	completer := &stubCompleter{
		response: "```json\n{\"intent\": \"income_in_period\", \"period\": \"year\"}\n```",
	}
	e := NewExtractor(completer, time.Second, discardLogger())

	intent, err := e.Extract(context.Background(), "income this year")
	require.NoError(t, err)
	assert.Equal(t, IntentIncomeInPeriod, intent.Kind)
	assert.Equal(t, PeriodYear, intent.Period)
}

func TestExtractor_ExplicitDates(t *testing.T) {
	completer := &stubCompleter{
		response: `{"intent": "spend_in_period", "start": "2025-03-01", "end": "2025-07-31"}`,
	}
	e := NewExtractor(completer, time.Second, discardLogger())

	intent, err := e.Extract(context.Background(), "spending between march and july")
	require.NoError(t, err)
	require.True(t, intent.HasExplicitRange())
	assert.Equal(t, day(2025, time.March, 1), *intent.Start)
	assert.Equal(t, day(2025, time.July, 31), *intent.End)
}

func TestExtractor_CompleterErrorIsUnavailable(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	e := NewExtractor(completer, time.Second, discardLogger())

	_, err := e.Extract(context.Background(), "spending this month")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestExtractor_EmptyResponseIsUnavailable(t *testing.T) {
	completer := &stubCompleter{response: "   "}
	e := NewExtractor(completer, time.Second, discardLogger())

	_, err := e.Extract(context.Background(), "spending this month")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestParseExtraction_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I think you spent a lot on groceries."},
		{"truncated", `{"intent": "spend_in_period", "cat`},
		{"bad period", `{"intent": "spend_in_period", "period": "fortnight"}`},
		{"bad date", `{"intent": "spend_in_period", "start": "March 1st", "end": "2025-07-31"}`},
		{"end before start", `{"intent": "spend_in_period", "start": "2025-07-31", "end": "2025-03-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseExtraction(tt.raw)
			assert.ErrorIs(t, err, ErrLLMMalformed)
		})
	}
}

func TestParseExtraction_UnsupportedIntent(t *testing.T) {
	_, err := parseExtraction(`{"intent": "transfer_money"}`)
	assert.ErrorIs(t, err, ErrLLMUnsupported)
}

func TestParseExtraction_SurroundingProse(t *testing.T) {
	// Prose around the object is tolerated as long as one object is present.
	intent, err := parseExtraction(`Here you go: {"intent": "unknown"} Hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, intent.Kind)
}

func TestCleanModelOutput(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanModelOutput("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanModelOutput("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanModelOutput(`{"a":1}`))
}
