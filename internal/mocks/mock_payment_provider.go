package mocks

import (
	"context"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentLinkProvider
}

func (m *MockPaymentProvider) CreatePaymentLink(ctx context.Context, booking *domain.Booking) (*domain.PaymentLink, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentLink), args.Error(1)
}
