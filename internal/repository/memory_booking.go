package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/metinatakli/cinex/internal/domain"
)

// MemoryBookingRepository keeps bookings in process memory, in creation order.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{}
}

func (m *MemoryBookingRepository) Append(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.ShowID != booking.ShowID || b.TimeID != booking.TimeID {
			continue
		}

		for _, seat := range booking.BookedSeats {
			if slices.Contains(b.BookedSeats, seat) {
				return domain.ErrSeatOccupied
			}
		}
	}

	m.bookings = append(m.bookings, copyBooking(booking))

	return nil
}

func (m *MemoryBookingRepository) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(bookingID)
	if idx < 0 {
		return nil, domain.ErrRecordNotFound
	}

	return copyBooking(m.bookings[idx]), nil
}

func (m *MemoryBookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bookings := make([]*domain.Booking, 0)

	for _, b := range m.bookings {
		if b.OwnerID == ownerID {
			bookings = append(bookings, copyBooking(b))
		}
	}

	return bookings, nil
}

func (m *MemoryBookingRepository) Remove(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(bookingID)
	if idx < 0 {
		return domain.ErrRecordNotFound
	}

	m.bookings = slices.Delete(m.bookings, idx, idx+1)

	return nil
}

func (m *MemoryBookingRepository) SetPaymentLink(ctx context.Context, bookingID, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(bookingID)
	if idx < 0 {
		return domain.ErrRecordNotFound
	}

	m.bookings[idx].PaymentLink = &link

	return nil
}

func (m *MemoryBookingRepository) MarkPaid(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(bookingID)
	if idx < 0 {
		return domain.ErrRecordNotFound
	}

	m.bookings[idx].IsPaid = true

	return nil
}

func (m *MemoryBookingRepository) SeatsByShowtime(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seats := make([]domain.SeatID, 0)

	for _, b := range m.bookings {
		if b.ShowID == showID && b.TimeID == timeID {
			seats = append(seats, b.BookedSeats...)
		}
	}

	return seats, nil
}

func (m *MemoryBookingRepository) indexOf(bookingID string) int {
	return slices.IndexFunc(m.bookings, func(b *domain.Booking) bool {
		return b.ID == bookingID
	})
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.BookedSeats = slices.Clone(b.BookedSeats)
	if b.PaymentLink != nil {
		link := *b.PaymentLink
		c.PaymentLink = &link
	}

	return &c
}
