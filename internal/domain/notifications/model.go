package notifications

import (
	"context"
	"fmt"
)

type Kind string

const (
	KindBookingRequested Kind = "booking_requested"
	KindBookingConfirmed Kind = "booking_confirmed"
)

const (
	TitleBookingRequested = "New Booking Request"
	TitleBookingConfirmed = "Event Confirmed!"
)

type Notification struct {
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	BookingID string `json:"booking_id"`
}

func BookingRequested(bookingID, title string) Notification {
	return Notification{
		Kind:      KindBookingRequested,
		Title:     TitleBookingRequested,
		Body:      fmt.Sprintf("%s by a devotee.", title),
		BookingID: bookingID,
	}
}

func BookingConfirmed(bookingID, title string) Notification {
	return Notification{
		Kind:      KindBookingConfirmed,
		Title:     TitleBookingConfirmed,
		Body:      fmt.Sprintf("%s has been officially scheduled.", title),
		BookingID: bookingID,
	}
}

// Notifier receives user-facing alerts and admin badge updates.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	BadgeChanged(ctx context.Context, pending int64) error
}

type PendingCounter interface {
	PendingCount(ctx context.Context) (int64, error)
}
