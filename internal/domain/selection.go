package domain

import (
	"context"
	"slices"
	"time"
)

type SelectionStatus string

const (
	StatusNoTimeSelected SelectionStatus = "no_time_selected"
	StatusTimeSelected   SelectionStatus = "time_selected"
	StatusSeatsPicked    SelectionStatus = "seats_picked"
)

// SeatSelection is the in-progress, not yet confirmed choice of a single
// session for a single show. Selected seats never intersect occupied seats,
// never exceed MaxSelectedSeats and are only present while a time is set.
//
// Fields are exported for serialization by selection repositories; mutate
// only through the methods.
type SeatSelection struct {
	ShowID        string    `json:"showId"`
	SelectedTime  *TimeSlot `json:"selectedTime,omitempty"`
	SelectedSeats []SeatID  `json:"selectedSeats"`
	OccupiedSeats []SeatID  `json:"occupiedSeats"`
	Loading       bool      `json:"loading"`
	Degraded      bool      `json:"degraded"`
	Seq           uint64    `json:"seq"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Checkout is a validated snapshot of a selection ready to become a booking.
type Checkout struct {
	ShowID string
	Time   TimeSlot
	Seats  []SeatID
	Seq    uint64
}

func NewSeatSelection(showID string) *SeatSelection {
	return &SeatSelection{
		ShowID:        showID,
		SelectedSeats: []SeatID{},
		OccupiedSeats: []SeatID{},
	}
}

func (s *SeatSelection) Status() SelectionStatus {
	switch {
	case s.SelectedTime == nil:
		return StatusNoTimeSelected
	case len(s.SelectedSeats) == 0:
		return StatusTimeSelected
	default:
		return StatusSeatsPicked
	}
}

// BeginTimeSelection switches to a new showtime and returns the sequence
// number the matching occupancy response must carry. Any response to an
// earlier selection becomes stale.
func (s *SeatSelection) BeginTimeSelection(slot TimeSlot) uint64 {
	s.Seq++
	s.SelectedTime = &slot
	s.SelectedSeats = []SeatID{}
	s.OccupiedSeats = []SeatID{}
	s.Loading = true
	s.Degraded = false
	s.UpdatedAt = time.Now()

	return s.Seq
}

// ApplyOccupancy stores the occupancy fetched for request seq. It reports
// false and changes nothing when a newer time selection superseded the
// request. A failed fetch leaves occupancy empty and marks the selection
// degraded so seats still render but checkout is refused.
func (s *SeatSelection) ApplyOccupancy(seq uint64, occupied []SeatID, fetchErr error) bool {
	if seq != s.Seq || !s.Loading {
		return false
	}

	s.Loading = false
	s.UpdatedAt = time.Now()

	if fetchErr != nil {
		s.OccupiedSeats = []SeatID{}
		s.Degraded = true
		return true
	}

	s.OccupiedSeats = append([]SeatID{}, occupied...)
	s.Degraded = false
	slices.Sort(s.OccupiedSeats)

	return true
}

func (s *SeatSelection) IsOccupied(seat SeatID) bool {
	_, found := slices.BinarySearch(s.OccupiedSeats, seat)
	return found
}

func (s *SeatSelection) IsSelected(seat SeatID) bool {
	return slices.Contains(s.SelectedSeats, seat)
}

// ToggleSeat adds the seat when absent and removes it when present. All
// checks run before anything is mutated. A change bumps the sequence number
// so earlier checkout snapshots no longer describe the selection.
func (s *SeatSelection) ToggleSeat(seat SeatID) error {
	if s.SelectedTime == nil {
		return ErrNoTimeSelected
	}

	if s.Loading {
		return ErrOccupancyLoading
	}

	if s.IsOccupied(seat) {
		return ErrSeatOccupied
	}

	idx := slices.Index(s.SelectedSeats, seat)
	if idx >= 0 {
		s.SelectedSeats = slices.Delete(s.SelectedSeats, idx, idx+1)
	} else {
		if len(s.SelectedSeats) >= MaxSelectedSeats {
			return ErrSelectionLimit
		}

		s.SelectedSeats = append(s.SelectedSeats, seat)
	}

	s.Seq++
	s.UpdatedAt = time.Now()

	return nil
}

// Checkout validates the selection for confirmation without changing it.
func (s *SeatSelection) Checkout() (*Checkout, error) {
	if s.SelectedTime == nil || len(s.SelectedSeats) == 0 {
		return nil, ErrIncompleteSelection
	}

	if s.Loading {
		return nil, ErrOccupancyLoading
	}

	if s.Degraded {
		return nil, ErrOccupancyUnavailable
	}

	return &Checkout{
		ShowID: s.ShowID,
		Time:   *s.SelectedTime,
		Seats:  slices.Clone(s.SelectedSeats),
		Seq:    s.Seq,
	}, nil
}

// Reset returns the selection to NoTimeSelected. The sequence number keeps
// counting so late occupancy responses are still recognised as stale.
func (s *SeatSelection) Reset() {
	s.Seq++
	s.SelectedTime = nil
	s.SelectedSeats = []SeatID{}
	s.OccupiedSeats = []SeatID{}
	s.Loading = false
	s.Degraded = false
	s.UpdatedAt = time.Now()
}

// CompleteCheckout settles the selection after checkout was booked and
// reports whether it was reset. A selection unchanged since the snapshot is
// reset. One that picked other seats for the same showtime keeps them, minus
// the booked seats which are now occupied. Anything else is left alone.
func (s *SeatSelection) CompleteCheckout(checkout *Checkout) bool {
	if s.Seq == checkout.Seq {
		s.Reset()
		return true
	}

	if s.SelectedTime == nil || s.SelectedTime.TimeID != checkout.Time.TimeID || s.Loading {
		return false
	}

	s.SelectedSeats = slices.DeleteFunc(s.SelectedSeats, func(seat SeatID) bool {
		return slices.Contains(checkout.Seats, seat)
	})

	s.OccupiedSeats = append(s.OccupiedSeats, checkout.Seats...)
	slices.Sort(s.OccupiedSeats)
	s.OccupiedSeats = slices.Compact(s.OccupiedSeats)
	s.UpdatedAt = time.Now()

	return false
}

func (s *SeatSelection) Clone() *SeatSelection {
	c := *s
	if s.SelectedTime != nil {
		t := *s.SelectedTime
		c.SelectedTime = &t
	}
	c.SelectedSeats = slices.Clone(s.SelectedSeats)
	c.OccupiedSeats = slices.Clone(s.OccupiedSeats)

	return &c
}

type SelectionKey struct {
	SessionID string
	ShowID    string
}

type SelectionRepository interface {
	// Get returns the stored selection or a fresh one when none exists.
	Get(ctx context.Context, key SelectionKey) (*SeatSelection, error)
	// Update applies fn atomically to the stored selection. fn may run more
	// than once and must not have side effects outside the selection.
	Update(ctx context.Context, key SelectionKey, fn func(*SeatSelection) error) (*SeatSelection, error)
	Delete(ctx context.Context, key SelectionKey) error
}
