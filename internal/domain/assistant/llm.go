package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// LLM failure taxonomy. All three recover locally via the rule-based
// parser; none surfaces to the end user.
var (
	ErrLLMUnavailable = errors.New("llm: unavailable")
	ErrLLMMalformed   = errors.New("llm: malformed output")
	ErrLLMUnsupported = errors.New("llm: intent outside allowed set")
)

// Completer is the minimal language-model contract the extractor needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiCompleter implements Completer over the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini-backed completer.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete sends the prompt and returns the raw model text.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// extractionPrompt lists the fixed allowed-intent schema. The model is
// untrusted: whatever comes back is validated before use.
const extractionPrompt = `You classify personal-finance questions. Output STRICT JSON only
(no comments, no code fences, no extra text), one object:
{"intent": "...", "category": "...", "period": "...", "start": "...", "end": "..."}

Allowed intents:
- spend_in_period
- spend_in_category_period
- income_in_period
- income_expense_overview_period
- budget_status_category_period
- budget_status_period
- highest_budget_period
- lowest_budget_period
- top_category_in_period
- unknown

Rules:
- "category": lowercase category name, or "" when none is mentioned.
- "period": one of week, month, quarter, half_year, year, or "" when none.
- "start"/"end": ISO dates "YYYY-MM-DD" ONLY when the question names explicit
  dates; otherwise "".
- Use "unknown" when the question is not a financial question.

Question: %s`

// llmEnvelope is the shape the model is asked to return.
type llmEnvelope struct {
	Intent   string `json:"intent"`
	Category string `json:"category"`
	Period   string `json:"period"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// Extractor asks an external model to classify the query. One attempt per
// request, bounded by timeout; every failure mode maps onto the taxonomy
// above so the orchestrator can fall back.
type Extractor struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewExtractor creates an LLM intent extractor.
func NewExtractor(completer Completer, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{completer: completer, timeout: timeout, logger: logger}
}

// Extract classifies text into an Intent or fails with a taxonomy error.
func (e *Extractor) Extract(ctx context.Context, text string) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(extractionPrompt, text))
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	if strings.TrimSpace(raw) == "" {
		return Intent{}, fmt.Errorf("%w: empty response", ErrLLMUnavailable)
	}

	intent, err := parseExtraction(raw)
	if err != nil {
		e.logger.Debug("model output rejected", slog.Any("error", err))
		return Intent{}, err
	}
	return intent, nil
}

// parseExtraction validates untrusted model output against the closed
// intent schema.
func parseExtraction(raw string) (Intent, error) {
	clean := extractJSONObject(cleanModelOutput(raw))
	if clean == "" {
		return Intent{}, fmt.Errorf("%w: no JSON object in response", ErrLLMMalformed)
	}

	var env llmEnvelope
	if err := json.Unmarshal([]byte(clean), &env); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrLLMMalformed, err)
	}

	kind := IntentKind(strings.TrimSpace(env.Intent))
	if !ValidIntentKind(kind) {
		return Intent{}, fmt.Errorf("%w: %q", ErrLLMUnsupported, env.Intent)
	}

	intent := Intent{
		Kind:     kind,
		Category: strings.ToLower(strings.TrimSpace(env.Category)),
	}

	if p := strings.TrimSpace(env.Period); p != "" {
		token := PeriodToken(p)
		switch token {
		case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodHalfYear, PeriodYear:
			intent.Period = token
		default:
			return Intent{}, fmt.Errorf("%w: period %q", ErrLLMMalformed, env.Period)
		}
	}

	parseDate := func(s string) (*time.Time, error) {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", ErrLLMMalformed, s)
		}
		return &t, nil
	}

	var err error
	if intent.Start, err = parseDate(env.Start); err != nil {
		return Intent{}, err
	}
	if intent.End, err = parseDate(env.End); err != nil {
		return Intent{}, err
	}
	if intent.Start != nil && intent.End != nil && intent.End.Before(*intent.Start) {
		return Intent{}, fmt.Errorf("%w: end before start", ErrLLMMalformed)
	}

	return intent, nil
}

// cleanModelOutput strips Markdown fences the model may add despite
// instructions.
func cleanModelOutput(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

// extractJSONObject keeps only the first '{' through the last '}'.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
