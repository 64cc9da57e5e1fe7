package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	ID          string
	OwnerID     string
	ShowID      string
	TimeID      string
	ShowTime    time.Time
	MovieTitle  string
	PosterURL   string
	Runtime     int
	BookedSeats []SeatID
	Amount      decimal.Decimal
	Currency    string
	IsPaid      bool
	PaymentLink *string
	CreatedAt   time.Time
}

func NewBooking(ownerID string, show *Show, checkout *Checkout, prices PriceList) *Booking {
	return &Booking{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		ShowID:      show.ID,
		TimeID:      checkout.Time.TimeID,
		ShowTime:    checkout.Time.Time,
		MovieTitle:  show.Movie.Title,
		PosterURL:   show.Movie.PosterURL,
		Runtime:     show.Movie.Runtime,
		BookedSeats: slices.Clone(checkout.Seats),
		Amount:      prices.Total(len(checkout.Seats)),
		Currency:    prices.Currency,
		CreatedAt:   time.Now(),
	}
}

// BookingRepository is the persistence boundary of the booking store. Append
// must reject seats that are already booked for the same screening with
// ErrSeatOccupied.
type BookingRepository interface {
	Append(ctx context.Context, booking *Booking) error
	Get(ctx context.Context, bookingID string) (*Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Booking, error)
	Remove(ctx context.Context, bookingID string) error
	SetPaymentLink(ctx context.Context, bookingID, link string) error
	MarkPaid(ctx context.Context, bookingID string) error
	SeatsByShowtime(ctx context.Context, showID, timeID string) ([]SeatID, error)
}
