package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saldo-app/saldo-api/internal/domain/alerts"
	"github.com/saldo-app/saldo-api/internal/domain/assistant"
	assistanthandler "github.com/saldo-app/saldo-api/internal/domain/assistant/handler"
	"github.com/saldo-app/saldo-api/internal/domain/budget"
	"github.com/saldo-app/saldo-api/internal/domain/ledger"
	"github.com/saldo-app/saldo-api/pkg/config"
	"github.com/saldo-app/saldo-api/pkg/cron"
	"github.com/saldo-app/saldo-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	BudgetRepo budget.Repository
	LedgerRepo ledger.Repository

	// Services
	BudgetSelector   *budget.Selector
	Aggregator       *ledger.Aggregator
	AssistantService *assistant.Service
	AlertsService    *alerts.Service
	Scheduler        *cron.Scheduler

	// Handlers
	AssistantHandler *assistanthandler.AssistantHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.BudgetRepo = budget.NewPostgresRepository(d.DB.Pool)
	d.LedgerRepo = ledger.NewPostgresRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	d.BudgetSelector = budget.NewSelector(d.BudgetRepo)
	d.Aggregator = ledger.NewAggregator(d.LedgerRepo)

	// The LLM extractor is optional: without an API key the assistant
	// runs on the rule-based parser alone.
	var extractor assistant.IntentExtractor
	if d.Config.Gemini.APIKey != "" {
		completer, err := assistant.NewGeminiCompleter(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Model)
		if err != nil {
			return fmt.Errorf("failed to init gemini completer: %w", err)
		}
		extractor = assistant.NewExtractor(completer, d.Config.Assistant.LLMTimeout, d.Logger)
		d.Logger.Info("llm extractor enabled", slog.String("model", d.Config.Gemini.Model))
	} else {
		d.Logger.Info("no GEMINI_API_KEY set, assistant runs on rule-based parsing only")
	}

	rules := assistant.NewRuleParser()
	composer := assistant.NewComposer(d.Config.Assistant.CurrencyCode)

	d.AssistantService = assistant.NewService(
		extractor,
		rules,
		d.BudgetSelector,
		d.Aggregator,
		composer,
		nil,
		d.Logger,
	)

	d.AlertsService = alerts.NewService(d.BudgetRepo, d.LedgerRepo, nil, d.Logger)
	d.Scheduler = cron.NewScheduler(d.AlertsService, d.Config.Assistant.AlertSweepSpec, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.AssistantHandler = assistanthandler.NewAssistantHandler(d.AssistantService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
