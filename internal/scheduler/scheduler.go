package scheduler

import (
	"context"
	"time"

	"github.com/dailycrate/dailycrate/internal/config"
	"github.com/dailycrate/dailycrate/internal/logger"
	"github.com/dailycrate/dailycrate/internal/service"
)

// Scheduler fires the billing sweep once per day at the configured UTC hour.
// It is deliberately dumb: the sweep itself is idempotent for a given date, so
// a missed or doubled tick never double-bills anyone.
type Scheduler struct {
	cfg     *config.Configuration
	logger  *logger.Logger
	billing service.BillingService

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(cfg *config.Configuration, logger *logger.Logger, billing service.BillingService) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		logger:  logger,
		billing: billing,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Infow("billing scheduler started", "sweep_hour_utc", s.cfg.Billing.SweepHourUTC)
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Infow("billing scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		next := s.nextRun(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		asOf := time.Now().UTC()
		if _, err := s.billing.RunSweep(ctx, asOf); err != nil {
			s.logger.Errorw("scheduled billing sweep failed",
				"as_of", asOf.Format(time.DateOnly),
				"error", err,
			)
		}
	}
}

// nextRun returns the next occurrence of the configured sweep hour strictly
// after now
func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Billing.SweepHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
