package mocks

import (
	"context"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Append(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Remove(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingRepo) SeatsByShowtime(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	args := m.Called(ctx, showID, timeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatID), args.Error(1)
}

func (m *MockBookingRepo) SetPaymentLink(ctx context.Context, bookingID, link string) error {
	args := m.Called(ctx, bookingID, link)
	return args.Error(0)
}

func (m *MockBookingRepo) MarkPaid(ctx context.Context, bookingID string) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}
