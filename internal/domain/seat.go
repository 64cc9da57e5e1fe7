package domain

import (
	"fmt"
	"slices"
	"strconv"
)

const (
	SeatsPerRow      = 9
	MaxSelectedSeats = 5
)

// Rows are rendered two at a time; the first group sits alone in front of
// the screen.
var rowGroups = [][]string{
	{"A", "B"},
	{"C", "D"},
	{"E", "F"},
	{"G", "H"},
	{"I", "J"},
}

type SeatID string

type SeatRow struct {
	Row   string
	Seats []SeatID
}

type RowGroup struct {
	Rows []SeatRow
}

// GenerateLayout enumerates the fixed hall layout. Every call returns a fresh
// copy so callers may annotate it freely.
func GenerateLayout() []RowGroup {
	groups := make([]RowGroup, len(rowGroups))

	for i, rows := range rowGroups {
		group := RowGroup{Rows: make([]SeatRow, len(rows))}

		for j, row := range rows {
			seats := make([]SeatID, SeatsPerRow)
			for col := 1; col <= SeatsPerRow; col++ {
				seats[col-1] = SeatID(row + strconv.Itoa(col))
			}

			group.Rows[j] = SeatRow{Row: row, Seats: seats}
		}

		groups[i] = group
	}

	return groups
}

func AllSeatIDs() []SeatID {
	var ids []SeatID

	for _, group := range GenerateLayout() {
		for _, row := range group.Rows {
			ids = append(ids, row.Seats...)
		}
	}

	return ids
}

func ParseSeatID(s string) (SeatID, error) {
	if len(s) < 2 {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidSeat)
	}

	row, colStr := s[:1], s[1:]

	validRow := false
	for _, rows := range rowGroups {
		if slices.Contains(rows, row) {
			validRow = true
			break
		}
	}

	col, err := strconv.Atoi(colStr)
	if !validRow || err != nil || col < 1 || col > SeatsPerRow || strconv.Itoa(col) != colStr {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidSeat)
	}

	return SeatID(s), nil
}

func (id SeatID) String() string {
	return string(id)
}
