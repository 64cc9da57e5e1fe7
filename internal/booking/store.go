// Package booking owns the list of confirmed bookings of every guest and the
// rules for cancelling, paying for and printing them.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/skip2/go-qrcode"
)

const ticketSize = 256

// OccupancyInvalidator drops any cached occupancy of a screening.
type OccupancyInvalidator interface {
	Invalidate(ctx context.Context, showID, timeID string) error
}

type Store struct {
	repo        domain.BookingRepository
	publisher   domain.EventPublisher
	invalidator OccupancyInvalidator
	logger      *slog.Logger
}

type Option func(*Store)

func WithPublisher(p domain.EventPublisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

func WithInvalidator(i OccupancyInvalidator) Option {
	return func(s *Store) {
		s.invalidator = i
	}
}

func NewStore(repo domain.BookingRepository, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Append records a new booking. Seats already booked for the same screening
// are rejected with domain.ErrSeatOccupied.
func (s *Store) Append(ctx context.Context, b *domain.Booking) error {
	if err := s.repo.Append(ctx, b); err != nil {
		if errors.Is(err, domain.ErrSeatOccupied) {
			return err
		}
		return fmt.Errorf("failed to append booking %s: %w", b.ID, err)
	}

	s.afterChange(ctx, domain.EventBookingConfirmed, b)

	return nil
}

// List returns the bookings of the owner in creation order.
func (s *Store) List(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	bookings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// Get returns the booking when it belongs to the owner. Bookings of other
// owners are reported as missing.
func (s *Store) Get(ctx context.Context, ownerID, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %s: %w", bookingID, err)
	}

	if b.OwnerID != ownerID {
		return nil, domain.ErrBookingNotFound
	}

	return b, nil
}

// Cancel removes a paid booking. Unpaid bookings stay listed and yield
// domain.ErrUnpaidBooking.
func (s *Store) Cancel(ctx context.Context, ownerID, bookingID string) error {
	b, err := s.Get(ctx, ownerID, bookingID)
	if err != nil {
		return err
	}

	if !b.IsPaid {
		return domain.ErrUnpaidBooking
	}

	if err := s.repo.Remove(ctx, bookingID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("failed to remove booking %s: %w", bookingID, err)
	}

	s.afterChange(ctx, domain.EventBookingCancelled, b)

	return nil
}

// AttachPaymentLink asks the provider for a hosted checkout page for an unpaid
// booking and stores the link on it.
func (s *Store) AttachPaymentLink(
	ctx context.Context,
	ownerID, bookingID string,
	provider domain.PaymentLinkProvider,
) (*domain.Booking, error) {
	b, err := s.Get(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if b.IsPaid {
		return nil, domain.ErrAlreadyPaid
	}

	link, err := provider.CreatePaymentLink(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	if err := s.repo.SetPaymentLink(ctx, bookingID, link.URL); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to store payment link: %w", err)
	}

	b.PaymentLink = &link.URL

	return b, nil
}

// MarkPaid is called by the payment provider notification. It is idempotent.
func (s *Store) MarkPaid(ctx context.Context, bookingID string) error {
	err := s.repo.MarkPaid(ctx, bookingID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrBookingNotFound
	}

	return err
}

// TicketPNG renders the booking reference of a paid booking as a QR code.
func (s *Store) TicketPNG(ctx context.Context, ownerID, bookingID string) ([]byte, error) {
	b, err := s.Get(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if !b.IsPaid {
		return nil, domain.ErrUnpaidBooking
	}

	png, err := qrcode.Encode(TicketReference(b), qrcode.Medium, ticketSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render ticket: %w", err)
	}

	return png, nil
}

// TicketReference is the text scanned at the entrance.
func TicketReference(b *domain.Booking) string {
	return fmt.Sprintf("CINEX:%s:%s:%s", b.ID, b.TimeID, joinSeats(b.BookedSeats))
}

func joinSeats(seats []domain.SeatID) string {
	parts := make([]string, len(seats))
	for i, seat := range seats {
		parts[i] = seat.String()
	}

	return strings.Join(parts, ",")
}

func (s *Store) afterChange(ctx context.Context, eventType string, b *domain.Booking) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, b.ShowID, b.TimeID); err != nil {
			s.logger.Warn("failed to invalidate occupancy cache", "show_id", b.ShowID, "time_id", b.TimeID, "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, domain.NewBookingEvent(eventType, b)); err != nil {
			s.logger.Error("failed to publish booking event", "type", eventType, "booking_id", b.ID, "error", err)
		}
	}
}
