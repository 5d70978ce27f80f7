// Package event publishes booking lifecycle events for the wider
// application (notifications, analytics) to consume.
package event

import (
	"context"
	"time"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingPaid      = "booking.paid"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingsExpired  = "bookings.expired"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"bookingId,omitempty"`
	UserID     int64     `json:"userId,omitempty"`
	ShowID     int64     `json:"showId,omitempty"`
	SeatIDs    []int64   `json:"seatIds,omitempty"`
	Expired    int64     `json:"expired,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
