package calendar

import "errors"

var ErrInvalidRange = errors.New("start date must not be after end date")

// Range is a closed interval of calendar days: both Start and End are part of it.
type Range struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// NewRange validates start <= end.
func NewRange(start, end Date) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether a and b share at least one day.
// Ranges touching at a boundary day overlap.
func Overlaps(a, b Range) bool {
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// Contains reports whether d falls within r, boundaries included.
func Contains(r Range, d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of days covered by r.
func (r Range) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// ExtendBy returns r with End moved n days later.
func (r Range) ExtendBy(n int) Range {
	return Range{Start: r.Start, End: r.End.AddDays(n)}
}
