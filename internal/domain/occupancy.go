package domain

import "context"

// OccupancyOracle reports the seats already taken for a screening. Answers
// must be stable for a given (showID, timeID) until a booking changes.
type OccupancyOracle interface {
	GetOccupied(ctx context.Context, showID, timeID string) ([]SeatID, error)
}
