// Package events defines booking notifications published to the message broker.
package events

import (
	"context"
	"time"
)

type Type string

const (
	BookingCreated      Type = "booking.created"
	BookingCancelled    Type = "booking.cancelled"
	BookingReturned     Type = "booking.returned"
	BookingExtended     Type = "booking.extended"
	ReminderStartsToday Type = "reminder.starts_today"
	ReminderSoonOverdue Type = "reminder.soon_overdue"
)

// Event is the JSON payload sent for every booking state change or reminder.
type Event struct {
	Type           Type      `json:"type"`
	ReservationID  string    `json:"reservation_id"`
	UserID         string    `json:"user_id"`
	EntityID       string    `json:"entity_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	ExtensionCount int       `json:"extension_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
