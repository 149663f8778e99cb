package booking

import (
	"github.com/explore-grabby/booking-backend/internal/calendar"
)

// newReservation builds an Active reservation created on the given day.
func newReservation(id, userID, entityID string, rng calendar.Range, createdOn calendar.Date) (*Reservation, error) {
	if err := rng.Validate(); err != nil {
		return nil, ErrInvalidRange
	}
	return &Reservation{
		ID:        id,
		UserID:    userID,
		EntityID:  entityID,
		Range:     rng,
		CreatedOn: createdOn,
		Status:    StatusActive,
	}, nil
}

// Cancel moves an Active reservation to Cancelled.
func (r *Reservation) Cancel() error {
	return r.finish(StatusCancelled)
}

// Return moves an Active reservation to Returned.
func (r *Reservation) Return() error {
	return r.finish(StatusReturned)
}

// Extend moves the end date to newEnd and counts the extension.
// Conflict and cap checks belong to ExtensionPolicy; this only guards the state.
func (r *Reservation) Extend(newEnd calendar.Date) error {
	if r.Status != StatusActive {
		return ErrIllegalTransition
	}
	if !newEnd.After(r.Range.End) {
		return ErrInvalidExtension
	}
	r.Range.End = newEnd
	r.ExtensionCount++
	return nil
}

func (r *Reservation) finish(to Status) error {
	if r.Status != StatusActive {
		return ErrIllegalTransition
	}
	r.Status = to
	return nil
}
