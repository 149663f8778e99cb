package booking

import (
	"net/http"
	"slices"
	"time"

	"github.com/explore-grabby/booking-backend/internal/calendar"
	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "booking_not_found", "booking not found")
	ErrEntityNotFound         = apperror.New(http.StatusNotFound, "entity_not_found", "entity not found")
	ErrInvalidRange           = apperror.New(http.StatusBadRequest, "invalid_range", "start date must not be after end date")
	ErrConflict               = apperror.New(http.StatusConflict, "booking_conflict", "entity is already booked for the requested dates")
	ErrExtensionLimitExceeded = apperror.New(http.StatusBadRequest, "extension_limit_exceeded", "requested extension exceeds the allowed number of days")
	ErrInvalidExtension       = apperror.New(http.StatusBadRequest, "invalid_extension", "extension must move the end date forward")
	ErrIllegalTransition      = apperror.New(http.StatusConflict, "booking_not_active", "booking is no longer active")
	ErrEntityArchived         = apperror.New(http.StatusConflict, "entity_archived", "entity is archived")
	ErrPermissionDenied       = apperror.New(http.StatusForbidden, "permission_denied", "permission denied")
	ErrEmptyBatch             = apperror.New(http.StatusBadRequest, "empty_batch", "at least one booking is required")
	ErrInvalidView            = apperror.New(http.StatusBadRequest, "invalid_view", "status must be one of upcoming, overdue, soon-overdue, starts-today, all")
)

// ConflictError reports the reservations that block a requested interval.
// It matches ErrConflict with errors.Is.
type ConflictError struct {
	EntityID  string
	Conflicts []*Reservation
}

func (e *ConflictError) Error() string { return ErrConflict.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// Reservation is one booked interval of a single entity.
type Reservation struct {
	ID             string
	UserID         string
	EntityID       string
	Range          calendar.Range
	CreatedOn      calendar.Date
	Status         Status
	ExtensionCount int
	UpdatedAt      time.Time
}

func (r *Reservation) clone() *Reservation {
	c := *r
	return &c
}

// Filter selects reservations. Zero-valued fields do not constrain.
type Filter struct {
	UserID      string
	EntityID    string
	ExcludeID   string
	Statuses    []Status
	Overlapping *calendar.Range
	StartOn     *calendar.Date
	EndFrom     *calendar.Date // end_date >= EndFrom
	EndTo       *calendar.Date // end_date <= EndTo
}

// Matches applies the filter to a single reservation.
func (f Filter) Matches(r *Reservation) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.EntityID != "" && r.EntityID != f.EntityID {
		return false
	}
	if f.ExcludeID != "" && r.ID == f.ExcludeID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	if f.Overlapping != nil && !calendar.Overlaps(r.Range, *f.Overlapping) {
		return false
	}
	if f.StartOn != nil && !r.Range.Start.Equal(*f.StartOn) {
		return false
	}
	if f.EndFrom != nil && r.Range.End.Before(*f.EndFrom) {
		return false
	}
	if f.EndTo != nil && r.Range.End.After(*f.EndTo) {
		return false
	}
	return true
}

// View names a ledger projection exposed to callers.
type View string

const (
	ViewUpcoming    View = "upcoming"
	ViewOverdue     View = "overdue"
	ViewSoonOverdue View = "soon-overdue"
	ViewStartsToday View = "starts-today"
	ViewAll         View = "all"
)

// Overview bundles every per-user view computed for the same day.
type Overview struct {
	AsOf        calendar.Date
	Overdue     []*Reservation
	Upcoming    []*Reservation
	SoonOverdue []*Reservation
	StartsToday []*Reservation
	ActiveCount int
}
