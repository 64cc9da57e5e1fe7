// Package occupancy answers which seats of a screening are already taken.
package occupancy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LedgerOracle reads occupancy straight from the booking ledger, so repeated
// queries for the same screening agree until a booking changes.
type LedgerOracle struct {
	bookings domain.BookingRepository
}

func NewLedgerOracle(bookings domain.BookingRepository) *LedgerOracle {
	return &LedgerOracle{
		bookings: bookings,
	}
}

func (o *LedgerOracle) GetOccupied(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	seats, err := o.bookings.SeatsByShowtime(ctx, showID, timeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read booked seats for %s/%s: %w", showID, timeID, err)
	}

	return seats, nil
}

// CachedOracle is a Redis read-through cache in front of another oracle.
// Cache failures fall back to the wrapped oracle.
type CachedOracle struct {
	next   domain.OccupancyOracle
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedOracle(next domain.OccupancyOracle, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedOracle {
	return &CachedOracle{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func generationKey(showID, timeID string) string {
	return fmt.Sprintf("occupancy:%s:%s:gen", showID, timeID)
}

func occupancyKey(showID, timeID string, generation int64) string {
	return fmt.Sprintf("occupancy:%s:%s:%d", showID, timeID, generation)
}

// GetOccupied serves the entry of the current generation of the screening.
// A ledger read that raced with Invalidate fills the entry of a generation
// nobody reads anymore.
func (o *CachedOracle) GetOccupied(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	generation, err := o.client.Get(ctx, generationKey(showID, timeID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		o.logger.Warn("occupancy cache generation read failed", "show_id", showID, "time_id", timeID, "error", err)
		return o.next.GetOccupied(ctx, showID, timeID)
	}

	key := occupancyKey(showID, timeID, generation)

	data, err := o.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var seats []domain.SeatID
		if err := json.Unmarshal(data, &seats); err == nil {
			return seats, nil
		}
		o.logger.Warn("discarding malformed occupancy cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		o.logger.Warn("occupancy cache read failed", "key", key, "error", err)
	}

	seats, err := o.next.GetOccupied(ctx, showID, timeID)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(seats)
	if err == nil {
		err = o.client.Set(ctx, key, data, o.ttl).Err()
	}
	if err != nil {
		o.logger.Warn("occupancy cache write failed", "key", key, "error", err)
	}

	return seats, nil
}

// Invalidate moves the screening to a new cache generation after a booking
// for it was added or removed. Entries of older generations expire with
// their TTL.
func (o *CachedOracle) Invalidate(ctx context.Context, showID, timeID string) error {
	return o.client.Incr(ctx, generationKey(showID, timeID)).Err()
}
