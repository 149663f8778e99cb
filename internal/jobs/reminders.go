// Package jobs runs scheduled work outside the request path.
package jobs

import (
	"context"
	"time"

	"github.com/explore-grabby/booking-backend/internal/booking"
	"github.com/explore-grabby/booking-backend/internal/calendar"
	"github.com/explore-grabby/booking-backend/internal/events"
	"github.com/explore-grabby/booking-backend/internal/logger"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	ledger          *booking.Ledger
	clock           calendar.Clock
	publisher       events.Publisher
	soonOverdueDays int
	timeout         time.Duration
}

func NewJobRunner(ledger *booking.Ledger, clock calendar.Clock, publisher events.Publisher, soonOverdueDays int) *JobRunner {
	return &JobRunner{
		ledger:          ledger,
		clock:           clock,
		publisher:       publisher,
		soonOverdueDays: soonOverdueDays,
		timeout:         time.Minute,
	}
}

// SendReminders publishes a reminder for every Active reservation starting
// today and for every one ending within the soon-overdue horizon.
func (jr *JobRunner) SendReminders() {
	jr.runWithRecovery("SendReminders", func(ctx context.Context) {
		today := jr.clock.Today()

		starting, err := jr.ledger.ListStartingOn(ctx, "", today)
		if err != nil {
			logger.Error("Failed to list reservations starting today", "error", err)
		} else {
			jr.publishAll(ctx, events.ReminderStartsToday, starting)
		}

		soon, err := jr.ledger.ListSoonOverdue(ctx, "", today, jr.soonOverdueDays)
		if err != nil {
			logger.Error("Failed to list soon overdue reservations", "error", err)
		} else {
			jr.publishAll(ctx, events.ReminderSoonOverdue, soon)
		}
	})
}

func (jr *JobRunner) publishAll(ctx context.Context, typ events.Type, rs []*booking.Reservation) {
	sent := 0
	for _, r := range rs {
		if err := jr.publisher.Publish(ctx, booking.NewEvent(typ, r)); err != nil {
			logger.Error("Failed to publish reminder", "type", typ, "reservation_id", r.ID, "error", err)
			continue
		}
		sent++
	}
	logger.Info("Reminders published", "type", typ, "sent", sent, "total", len(rs))
}

// runWithRecovery wraps job execution with panic recovery and a deadline.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName)
}
