package domain

import (
	"context"
	"time"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	ShowID     string    `json:"showId"`
	TimeID     string    `json:"timeId"`
	MovieTitle string    `json:"movieTitle"`
	Seats      []SeatID  `json:"seats"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ShowID:     b.ShowID,
		TimeID:     b.TimeID,
		MovieTitle: b.MovieTitle,
		Seats:      b.BookedSeats,
		Amount:     b.Amount.StringFixed(2),
		Currency:   b.Currency,
		OccurredAt: time.Now().UTC(),
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
