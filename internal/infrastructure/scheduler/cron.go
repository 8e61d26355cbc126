package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"NewsOfTheWorld/internal/ports"
)

// CronScheduler runs recurring jobs on standard five-field cron
// expressions in a configured timezone.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
func NewCronScheduler(loc *time.Location, logger *slog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
	}
}

// Schedule registers a job. The expression is validated here, so a typo in
// configuration fails at startup rather than at first tick.
func (s *CronScheduler) Schedule(expression string, job func(time.Time)) error {
	_, err := s.cron.AddFunc(expression, func() {
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", expression, err)
	}
	return nil
}

// Start launches the cron loop in the background.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
	}
	return nil
}

// Stop halts scheduling and waits for running jobs to finish, bounded by
// the context deadline.
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
