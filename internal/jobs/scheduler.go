package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/explore-grabby/booking-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the reminder job on spec, a cron expression with a
// leading seconds field evaluated in UTC.
func NewScheduler(jobRunner *JobRunner, spec string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	if _, err := c.AddFunc(spec, jobRunner.SendReminders); err != nil {
		return nil, fmt.Errorf("register SendReminders job: %w", err)
	}

	return &Scheduler{cron: c}, nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Cron scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}
