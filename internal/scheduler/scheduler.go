// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"cajachica/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = time.Minute

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New registers the backlog report on cfg.BacklogSpec. Specs carry a
// leading seconds field and are evaluated in UTC.
func New(cfg config.SchedulerConfig, backlog *BacklogReporter, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
		),
		log: log,
	}

	if _, err := s.cron.AddFunc(cfg.BacklogSpec, s.wrap("backlog_report", func(ctx context.Context) error {
		_, err := backlog.Run(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("register backlog report %q: %w", cfg.BacklogSpec, err)
	}
	return s, nil
}

func (s *Scheduler) wrap(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron scheduler stopped")
}

// Entries reports how many jobs are registered
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
