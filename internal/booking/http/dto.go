package http

import (
	"time"

	"github.com/explore-grabby/booking-backend/internal/booking"
	"github.com/explore-grabby/booking-backend/internal/calendar"
)

type BookingResponse struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	EntityID       string         `json:"entity_id"`
	StartDate      calendar.Date  `json:"start_date"`
	EndDate        calendar.Date  `json:"end_date"`
	CreatedOn      calendar.Date  `json:"created_on"`
	Status         booking.Status `json:"status"`
	ExtensionCount int            `json:"extension_count"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewBookingResponse(r *booking.Reservation) BookingResponse {
	return BookingResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		EntityID:       r.EntityID,
		StartDate:      r.Range.Start,
		EndDate:        r.Range.End,
		CreatedOn:      r.CreatedOn,
		Status:         r.Status,
		ExtensionCount: r.ExtensionCount,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newBookingResponses(rs []*booking.Reservation) []BookingResponse {
	items := make([]BookingResponse, len(rs))
	for i, r := range rs {
		items[i] = NewBookingResponse(r)
	}
	return items
}

// CreateBookingItem is one element of the POST /bookings array.
type CreateBookingItem struct {
	EntityID  string        `json:"entity_id" binding:"required,uuid"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
}

func (i CreateBookingItem) toItem() (booking.CreateItem, error) {
	if i.StartDate.IsZero() || i.EndDate.IsZero() {
		return booking.CreateItem{}, booking.ErrInvalidRange
	}
	rng, err := calendar.NewRange(i.StartDate, i.EndDate)
	if err != nil {
		return booking.CreateItem{}, booking.ErrInvalidRange
	}
	return booking.CreateItem{EntityID: i.EntityID, Range: rng}, nil
}

// ExtendBookingRequest carries either a number of days or a new end date.
type ExtendBookingRequest struct {
	Days    *int           `json:"days"`
	EndDate *calendar.Date `json:"end_date"`
}

type ListBookingsRequest struct {
	Status string `form:"status"`
}

type OverviewResponse struct {
	AsOf        calendar.Date     `json:"as_of"`
	Overdue     []BookingResponse `json:"overdue"`
	Upcoming    []BookingResponse `json:"upcoming"`
	SoonOverdue []BookingResponse `json:"soon_overdue"`
	StartsToday []BookingResponse `json:"starts_today"`
	ActiveCount int               `json:"active_count"`
}

func NewOverviewResponse(o *booking.Overview) OverviewResponse {
	return OverviewResponse{
		AsOf:        o.AsOf,
		Overdue:     newBookingResponses(o.Overdue),
		Upcoming:    newBookingResponses(o.Upcoming),
		SoonOverdue: newBookingResponses(o.SoonOverdue),
		StartsToday: newBookingResponses(o.StartsToday),
		ActiveCount: o.ActiveCount,
	}
}

type CountResponse struct {
	Active int `json:"active"`
}

// Slot is the occupied interval of an entity, without holder details.
type Slot struct {
	EntityID  string        `json:"entity_id"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
}

func newSlots(rs []*booking.Reservation) []Slot {
	slots := make([]Slot, len(rs))
	for i, r := range rs {
		slots[i] = Slot{EntityID: r.EntityID, StartDate: r.Range.Start, EndDate: r.Range.End}
	}
	return slots
}
