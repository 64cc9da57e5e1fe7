// Package selection drives the seat selection and checkout flow of a guest
// session for one show.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metinatakli/cinex/internal/domain"
)

var errStaleOccupancy = errors.New("occupancy response superseded by a newer time selection")

// BookingAppender is the part of the booking store the checkout needs.
type BookingAppender interface {
	Append(ctx context.Context, b *domain.Booking) error
}

// Controller applies selection operations to the state kept in a
// SelectionRepository. Every operation is validated before anything is
// stored, so a rejected operation leaves the selection unchanged.
type Controller struct {
	catalogue  domain.CatalogueProvider
	oracle     domain.OccupancyOracle
	selections domain.SelectionRepository
	bookings   BookingAppender
	prices     domain.PriceList
	logger     *slog.Logger
}

func NewController(
	catalogue domain.CatalogueProvider,
	oracle domain.OccupancyOracle,
	selections domain.SelectionRepository,
	bookings BookingAppender,
	prices domain.PriceList,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		catalogue:  catalogue,
		oracle:     oracle,
		selections: selections,
		bookings:   bookings,
		prices:     prices,
		logger:     logger,
	}
}

func (c *Controller) State(ctx context.Context, key domain.SelectionKey) (*domain.SeatSelection, error) {
	if _, err := c.catalogue.GetShow(ctx, key.ShowID); err != nil {
		return nil, err
	}

	return c.selections.Get(ctx, key)
}

// SelectTime switches the selection to the given showtime and loads its
// occupancy. The loading state is stored before the oracle is asked, so seat
// toggles from concurrent requests are refused until the answer arrives. An
// answer that arrives after a newer time selection is dropped.
func (c *Controller) SelectTime(ctx context.Context, key domain.SelectionKey, timeID string) (*domain.SeatSelection, error) {
	show, err := c.catalogue.GetShow(ctx, key.ShowID)
	if err != nil {
		return nil, err
	}

	slot, ok := show.FindTimeSlot(timeID)
	if !ok {
		return nil, domain.ErrTimeSlotNotFound
	}

	var seq uint64

	_, err = c.selections.Update(ctx, key, func(s *domain.SeatSelection) error {
		seq = s.BeginTimeSelection(slot)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store time selection: %w", err)
	}

	occupied, fetchErr := c.oracle.GetOccupied(ctx, show.ID, slot.TimeID)
	if fetchErr != nil {
		c.logger.Warn("occupancy unavailable, seats shown as free",
			"show_id", show.ID,
			"time_id", slot.TimeID,
			"error", fetchErr)
	}

	// the loading state is already stored, the answer must land even when the
	// caller went away
	applyCtx := context.WithoutCancel(ctx)

	updated, err := c.applyOccupancy(applyCtx, key, seq, occupied, fetchErr)
	if errors.Is(err, errStaleOccupancy) {
		c.logger.Debug("discarding stale occupancy", "show_id", show.ID, "time_id", slot.TimeID, "seq", seq)
		return c.selections.Get(applyCtx, key)
	}
	if err != nil {
		c.logger.Error("failed to store occupancy, marking selection degraded",
			"show_id", show.ID,
			"time_id", slot.TimeID,
			"error", err)

		updated, err = c.applyOccupancy(applyCtx, key, seq, nil, err)
		if errors.Is(err, errStaleOccupancy) {
			return c.selections.Get(applyCtx, key)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store occupancy: %w", err)
	}

	return updated, nil
}

func (c *Controller) applyOccupancy(
	ctx context.Context,
	key domain.SelectionKey,
	seq uint64,
	occupied []domain.SeatID,
	fetchErr error,
) (*domain.SeatSelection, error) {
	return c.selections.Update(ctx, key, func(s *domain.SeatSelection) error {
		if !s.ApplyOccupancy(seq, occupied, fetchErr) {
			return errStaleOccupancy
		}
		return nil
	})
}

// ToggleSeat adds or removes a seat of the current selection.
func (c *Controller) ToggleSeat(ctx context.Context, key domain.SelectionKey, seatID string) (*domain.SeatSelection, error) {
	seat, err := domain.ParseSeatID(seatID)
	if err != nil {
		return nil, err
	}

	if _, err := c.catalogue.GetShow(ctx, key.ShowID); err != nil {
		return nil, err
	}

	return c.selections.Update(ctx, key, func(s *domain.SeatSelection) error {
		return s.ToggleSeat(seat)
	})
}

// Confirm turns the current selection into a booking owned by ownerID and
// resets the selection. Nothing is booked when the selection is incomplete,
// still loading or its occupancy could not be verified.
func (c *Controller) Confirm(ctx context.Context, key domain.SelectionKey, ownerID string) (*domain.Booking, error) {
	show, err := c.catalogue.GetShow(ctx, key.ShowID)
	if err != nil {
		return nil, err
	}

	current, err := c.selections.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	checkout, err := current.Checkout()
	if err != nil {
		return nil, err
	}

	booking := domain.NewBooking(ownerID, show, checkout, c.prices)

	if err := c.bookings.Append(ctx, booking); err != nil {
		return nil, err
	}

	_, err = c.selections.Update(ctx, key, func(s *domain.SeatSelection) error {
		s.CompleteCheckout(checkout)
		return nil
	})
	if err != nil {
		// the booking exists, a leftover selection is only cosmetic
		c.logger.Error("failed to reset selection after checkout", "booking_id", booking.ID, "error", err)
	}

	return booking, nil
}

// Reset returns the selection to the no-time-selected state. The sequence
// keeps counting so an outstanding occupancy answer cannot revive it.
func (c *Controller) Reset(ctx context.Context, key domain.SelectionKey) (*domain.SeatSelection, error) {
	if _, err := c.catalogue.GetShow(ctx, key.ShowID); err != nil {
		return nil, err
	}

	return c.selections.Update(ctx, key, func(s *domain.SeatSelection) error {
		s.Reset()
		return nil
	})
}
