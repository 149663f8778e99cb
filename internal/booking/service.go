package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/explore-grabby/booking-backend/internal/calendar"
	"github.com/explore-grabby/booking-backend/internal/entity"
	"github.com/explore-grabby/booking-backend/internal/events"
	"github.com/explore-grabby/booking-backend/internal/logger"
)

// EntityFinder resolves the bookable entities referenced by reservations.
type EntityFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Entity, error)
}

type Config struct {
	MaxExtensionDays int
	SoonOverdueDays  int
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) canAccess(r *Reservation) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == r.UserID)
}

type CreateItem struct {
	EntityID string
	Range    calendar.Range
}

type CreateRequest struct {
	UserID string
	Items  []CreateItem
}

type Service interface {
	// Create books every item for the user or nothing at all.
	Create(ctx context.Context, req CreateRequest) ([]*Reservation, error)
	GetByID(ctx context.Context, actor Actor, id string) (*Reservation, error)
	Cancel(ctx context.Context, actor Actor, id string) (*Reservation, error)
	Return(ctx context.Context, actor Actor, id string) (*Reservation, error)
	// Extend pushes the end date back by days.
	Extend(ctx context.Context, actor Actor, id string, days int) (*Reservation, error)
	// ExtendTo is Extend expressed as the desired new end date.
	ExtendTo(ctx context.Context, actor Actor, id string, newEnd calendar.Date) (*Reservation, error)
	Delete(ctx context.Context, actor Actor, id string) error

	List(ctx context.Context, userID string, view View) ([]*Reservation, error)
	Overview(ctx context.Context, userID string) (*Overview, error)
	CountActive(ctx context.Context, userID string) (int, error)
	ListEntitySchedule(ctx context.Context, entityID string) ([]*Reservation, error)
}

type service struct {
	repo      Repository
	ledger    *Ledger
	policy    ExtensionPolicy
	entities  EntityFinder
	clock     calendar.Clock
	publisher events.Publisher
	soonDays  int
}

func NewService(repo Repository, entities EntityFinder, clock calendar.Clock, publisher events.Publisher, cfg Config) Service {
	if cfg.MaxExtensionDays <= 0 {
		cfg.MaxExtensionDays = DefaultMaxExtensionDays
	}
	if cfg.SoonOverdueDays < 0 {
		cfg.SoonOverdueDays = 0
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		repo:      repo,
		ledger:    NewLedger(repo),
		policy:    ExtensionPolicy{MaxExtensionDays: cfg.MaxExtensionDays},
		entities:  entities,
		clock:     clock,
		publisher: publisher,
		soonDays:  cfg.SoonOverdueDays,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) ([]*Reservation, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyBatch
	}

	entityIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		if err := item.Range.Validate(); err != nil {
			return nil, ErrInvalidRange
		}
		if err := s.checkBookable(ctx, item.EntityID); err != nil {
			return nil, err
		}
		entityIDs[i] = item.EntityID
	}

	// Items of the same batch must not overlap each other either.
	for i := range req.Items {
		for j := i + 1; j < len(req.Items); j++ {
			a, b := req.Items[i], req.Items[j]
			if a.EntityID == b.EntityID && calendar.Overlaps(a.Range, b.Range) {
				return nil, &ConflictError{EntityID: a.EntityID}
			}
		}
	}

	today := s.clock.Today()
	var created []*Reservation
	err := s.repo.WithEntityLock(ctx, entityIDs, func(ctx context.Context, repo Repository) error {
		ledger := NewLedger(repo)
		created = created[:0]
		for _, item := range req.Items {
			conflicts, err := ledger.FindConflicts(ctx, item.EntityID, item.Range, "")
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return &ConflictError{EntityID: item.EntityID, Conflicts: conflicts}
			}

			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate booking id failed: %w", err)
			}
			r, err := newReservation(id.String(), req.UserID, item.EntityID, item.Range, today)
			if err != nil {
				return err
			}
			if err := repo.Create(ctx, r); err != nil {
				return err
			}
			created = append(created, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range created {
		s.publish(ctx, events.BookingCreated, r)
	}
	return created, nil
}

func (s *service) checkBookable(ctx context.Context, entityID string) error {
	e, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrEntityNotFound.Wrap(err)
		}
		return err
	}
	if e.Archived {
		return ErrEntityArchived
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(r) {
		return nil, ErrPermissionDenied
	}
	return r, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (*Reservation, error) {
	r, err := s.mutate(ctx, actor, id, func(ctx context.Context, _ Repository, r *Reservation) error {
		return r.Cancel()
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCancelled, r)
	return r, nil
}

func (s *service) Return(ctx context.Context, actor Actor, id string) (*Reservation, error) {
	r, err := s.mutate(ctx, actor, id, func(ctx context.Context, _ Repository, r *Reservation) error {
		return r.Return()
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingReturned, r)
	return r, nil
}

func (s *service) Extend(ctx context.Context, actor Actor, id string, days int) (*Reservation, error) {
	r, err := s.mutate(ctx, actor, id, func(ctx context.Context, repo Repository, r *Reservation) error {
		extended, err := s.policy.Validate(ctx, NewLedger(repo), r, days)
		if err != nil {
			return err
		}
		return r.Extend(extended.End)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingExtended, r)
	return r, nil
}

func (s *service) ExtendTo(ctx context.Context, actor Actor, id string, newEnd calendar.Date) (*Reservation, error) {
	if newEnd.IsZero() {
		return nil, ErrInvalidRange
	}
	r, err := s.mutate(ctx, actor, id, func(ctx context.Context, repo Repository, r *Reservation) error {
		extended, err := s.policy.Validate(ctx, NewLedger(repo), r, r.Range.End.DaysUntil(newEnd))
		if err != nil {
			return err
		}
		return r.Extend(extended.End)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingExtended, r)
	return r, nil
}

// mutate re-reads the reservation under its entity lock, applies fn and
// persists the result. Nothing is written when fn fails.
func (s *service) mutate(ctx context.Context, actor Actor, id string, fn func(ctx context.Context, repo Repository, r *Reservation) error) (*Reservation, error) {
	current, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var result *Reservation
	err = s.repo.WithEntityLock(ctx, []string{current.EntityID}, func(ctx context.Context, repo Repository) error {
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, repo, r); err != nil {
			return err
		}
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete physically removes a reservation. It is an administrative operation
// outside the normal lifecycle.
func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, userID string, view View) ([]*Reservation, error) {
	today := s.clock.Today()
	switch view {
	case ViewUpcoming, "":
		return s.ledger.ListActiveOrUpcoming(ctx, userID, today)
	case ViewOverdue:
		return s.ledger.ListOverdue(ctx, userID, today)
	case ViewSoonOverdue:
		return s.ledger.ListSoonOverdue(ctx, userID, today, s.soonDays)
	case ViewStartsToday:
		return s.ledger.ListStartingOn(ctx, userID, today)
	case ViewAll:
		return s.ledger.ListAll(ctx, userID)
	}
	return nil, ErrInvalidView
}

func (s *service) Overview(ctx context.Context, userID string) (*Overview, error) {
	today := s.clock.Today()
	o := &Overview{AsOf: today}

	var err error
	if o.Overdue, err = s.ledger.ListOverdue(ctx, userID, today); err != nil {
		return nil, err
	}
	if o.Upcoming, err = s.ledger.ListActiveOrUpcoming(ctx, userID, today); err != nil {
		return nil, err
	}
	if o.SoonOverdue, err = s.ledger.ListSoonOverdue(ctx, userID, today, s.soonDays); err != nil {
		return nil, err
	}
	if o.StartsToday, err = s.ledger.ListStartingOn(ctx, userID, today); err != nil {
		return nil, err
	}
	if o.ActiveCount, err = s.ledger.CountActive(ctx, userID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CountActive(ctx context.Context, userID string) (int, error) {
	return s.ledger.CountActive(ctx, userID)
}

func (s *service) ListEntitySchedule(ctx context.Context, entityID string) ([]*Reservation, error) {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrEntityNotFound.Wrap(err)
		}
		return nil, err
	}
	return s.ledger.ListEntitySchedule(ctx, entityID, s.clock.Today())
}

func (s *service) publish(ctx context.Context, typ events.Type, r *Reservation) {
	if err := s.publisher.Publish(ctx, NewEvent(typ, r)); err != nil {
		logger.WarnContext(ctx, "publish booking event failed",
			"type", typ, "reservation_id", r.ID, "error", err)
	}
}

// NewEvent describes r as an event of the given type.
func NewEvent(typ events.Type, r *Reservation) events.Event {
	return events.Event{
		Type:           typ,
		ReservationID:  r.ID,
		UserID:         r.UserID,
		EntityID:       r.EntityID,
		StartDate:      r.Range.Start.String(),
		EndDate:        r.Range.End.String(),
		ExtensionCount: r.ExtensionCount,
		OccurredAt:     r.UpdatedAt,
	}
}
