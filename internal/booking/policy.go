package booking

import (
	"context"

	"github.com/explore-grabby/booking-backend/internal/calendar"
)

// DefaultMaxExtensionDays is used when no cap is configured.
const DefaultMaxExtensionDays = 7

// ExtensionPolicy decides whether an Active reservation may be extended.
type ExtensionPolicy struct {
	MaxExtensionDays int
}

// CheckDays validates the number of requested additional days against the cap.
func (p ExtensionPolicy) CheckDays(days int) error {
	if days < 1 {
		return ErrInvalidExtension
	}
	if days > p.MaxExtensionDays {
		return ErrExtensionLimitExceeded
	}
	return nil
}

// Validate returns the extended range for r if the extension is permitted.
// The whole extended range is re-scanned for conflicts on the same entity,
// ignoring r itself.
func (p ExtensionPolicy) Validate(ctx context.Context, ledger *Ledger, r *Reservation, days int) (calendar.Range, error) {
	if r.Status != StatusActive {
		return calendar.Range{}, ErrIllegalTransition
	}
	if err := p.CheckDays(days); err != nil {
		return calendar.Range{}, err
	}

	proposed := r.Range.ExtendBy(days)
	conflicts, err := ledger.FindConflicts(ctx, r.EntityID, proposed, r.ID)
	if err != nil {
		return calendar.Range{}, err
	}
	if len(conflicts) > 0 {
		return calendar.Range{}, &ConflictError{EntityID: r.EntityID, Conflicts: conflicts}
	}
	return proposed, nil
}
