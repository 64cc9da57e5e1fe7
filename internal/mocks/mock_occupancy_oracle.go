package mocks

import (
	"context"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOccupancyOracle struct {
	mock.Mock
}

func (m *MockOccupancyOracle) GetOccupied(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	args := m.Called(ctx, showID, timeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatID), args.Error(1)
}
