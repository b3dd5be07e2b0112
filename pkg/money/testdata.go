package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// TestDataGenerator produces realistic financial fixtures. Intended for
// tests and local seeding only.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a reproducible generator.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// expenseCategories matches the assistant's category vocabulary so seeded
// data answers real queries.
var expenseCategories = []string{
	"groceries", "transport", "utilities", "restaurants", "shopping",
	"subscriptions", "housing", "entertainment", "health", "travel",
	"education",
}

var incomeSources = []string{
	"salary", "freelance", "dividends", "interest", "refund", "bonus",
}

// TestExpense is one generated expense row.
type TestExpense struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Category    string
	AmountCents int64
	CreatedAt   time.Time
}

// TestIncome is one generated income row.
type TestIncome struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Source      string
	AmountCents int64
	ReceivedAt  time.Time
}

// TestBudget is one generated budget row.
type TestBudget struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Category   string
	Period     string
	LimitCents int64
	CreatedAt  time.Time
}

// Category picks a random expense category.
func (g *TestDataGenerator) Category() string {
	return expenseCategories[g.faker.IntRange(0, len(expenseCategories)-1)]
}

// CentsInRange picks a random amount in [minCents, maxCents].
func (g *TestDataGenerator) CentsInRange(minCents, maxCents int64) int64 {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	return int64(g.faker.IntRange(int(minCents), int(maxCents)))
}

// Expense generates one expense inside the window.
func (g *TestDataGenerator) Expense(userID uuid.UUID, start, end time.Time) TestExpense {
	return TestExpense{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    g.Category(),
		AmountCents: g.CentsInRange(100, 50000),
		CreatedAt:   g.faker.DateRange(start, end),
	}
}

// Expenses generates count expenses inside the window.
func (g *TestDataGenerator) Expenses(userID uuid.UUID, start, end time.Time, count int) []TestExpense {
	out := make([]TestExpense, count)
	for i := range out {
		out[i] = g.Expense(userID, start, end)
	}
	return out
}

// Income generates one income row inside the window.
func (g *TestDataGenerator) Income(userID uuid.UUID, start, end time.Time) TestIncome {
	return TestIncome{
		ID:          uuid.New(),
		UserID:      userID,
		Source:      incomeSources[g.faker.IntRange(0, len(incomeSources)-1)],
		AmountCents: g.CentsInRange(100000, 1000000),
		ReceivedAt:  g.faker.DateRange(start, end),
	}
}

// Budget generates a budget with a limit sized to the category.
func (g *TestDataGenerator) Budget(userID uuid.UUID, category, period string, createdAt time.Time) TestBudget {
	return TestBudget{
		ID:         uuid.New(),
		UserID:     userID,
		Category:   category,
		Period:     period,
		LimitCents: g.CentsInRange(10000, 200000),
		CreatedAt:  createdAt,
	}
}
