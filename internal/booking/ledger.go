package booking

import (
	"context"

	"github.com/explore-grabby/booking-backend/internal/calendar"
)

var activeOnly = []Status{StatusActive}

// Ledger answers availability and reporting questions over a Repository.
// Results are snapshots in insertion order. An empty userID selects all users.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// FindConflicts returns the Active reservations of entityID overlapping rng,
// skipping excludeID.
func (l *Ledger) FindConflicts(ctx context.Context, entityID string, rng calendar.Range, excludeID string) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{
		EntityID:    entityID,
		ExcludeID:   excludeID,
		Statuses:    activeOnly,
		Overlapping: &rng,
	})
}

// ListOverdue returns Active reservations whose end date is on or before asOf.
func (l *Ledger) ListOverdue(ctx context.Context, userID string, asOf calendar.Date) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{UserID: userID, Statuses: activeOnly, EndTo: &asOf})
}

// ListActiveOrUpcoming returns Active reservations ending on or after asOf.
func (l *Ledger) ListActiveOrUpcoming(ctx context.Context, userID string, asOf calendar.Date) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{UserID: userID, Statuses: activeOnly, EndFrom: &asOf})
}

// ListSoonOverdue returns Active reservations ending within horizonDays of asOf.
func (l *Ledger) ListSoonOverdue(ctx context.Context, userID string, asOf calendar.Date, horizonDays int) ([]*Reservation, error) {
	until := asOf.AddDays(horizonDays)
	return l.repo.List(ctx, Filter{UserID: userID, Statuses: activeOnly, EndFrom: &asOf, EndTo: &until})
}

// ListStartingOn returns Active reservations starting exactly on day.
func (l *Ledger) ListStartingOn(ctx context.Context, userID string, day calendar.Date) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{UserID: userID, Statuses: activeOnly, StartOn: &day})
}

// ListAll returns every reservation of userID regardless of status.
func (l *Ledger) ListAll(ctx context.Context, userID string) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{UserID: userID})
}

// ListEntitySchedule returns Active reservations of entityID ending on or after from.
func (l *Ledger) ListEntitySchedule(ctx context.Context, entityID string, from calendar.Date) ([]*Reservation, error) {
	return l.repo.List(ctx, Filter{EntityID: entityID, Statuses: activeOnly, EndFrom: &from})
}

func (l *Ledger) CountActive(ctx context.Context, userID string) (int, error) {
	return l.repo.Count(ctx, Filter{UserID: userID, Statuses: activeOnly})
}
