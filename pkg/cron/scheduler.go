// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/saldo-app/saldo-api/internal/domain/alerts"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	alertsSvc *alerts.Service
	sweepSpec string
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(alertsSvc *alerts.Service, sweepSpec string, logger *slog.Logger) *Scheduler {
	// Standard 5-field cron format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		alertsSvc: alertsSvc,
		sweepSpec: sweepSpec,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.sweepSpec, s.runSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("sweep_spec", s.sweepSpec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the budget sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.runSweep()
}

// runSweep evaluates every budget against its alerting bands.
func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting budget alert sweep")

	triggered, err := s.alertsSvc.Sweep(ctx)
	if err != nil {
		s.logger.Error("budget alert sweep failed", slog.Any("error", err))
		return
	}

	s.logger.Info("budget alert sweep completed",
		slog.Int("alerts_triggered", len(triggered)),
	)
}
