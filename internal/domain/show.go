package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID          string
	Title       string
	Overview    string
	PosterURL   string
	BackdropURL string
	TrailerURL  string
	Genres      []string
	Cast        []CastMember
	Language    string
	ReleaseDate time.Time
	Runtime     int
	Rating      float64
}

// CastMember is a credited actor. ProfileURL is empty when no portrait is
// known.
type CastMember struct {
	Name       string
	ProfileURL string
}

// TimeSlot is a bookable showtime. TimeID identifies the screening and is
// what occupancy and bookings are keyed on.
type TimeSlot struct {
	Time   time.Time `json:"time"`
	TimeID string    `json:"timeId"`
}

// DateTimes maps a calendar date (YYYY-MM-DD) to its ordered time slots.
type DateTimes map[string][]TimeSlot

type Show struct {
	ID        string
	Movie     Movie
	DateTimes DateTimes
}

// FindTimeSlot looks a screening up across all dates of the show.
func (s *Show) FindTimeSlot(timeID string) (TimeSlot, bool) {
	for _, slots := range s.DateTimes {
		for _, slot := range slots {
			if slot.TimeID == timeID {
				return slot, true
			}
		}
	}

	return TimeSlot{}, false
}

type Trailer struct {
	ID       string
	Title    string
	ImageURL string
	VideoURL string
}

type CatalogueProvider interface {
	ListShows(ctx context.Context) ([]*Show, error)
	GetShow(ctx context.Context, showID string) (*Show, error)
	GetDateTimes(ctx context.Context, showID string) (DateTimes, error)
	ListTrailers(ctx context.Context) ([]Trailer, error)
}
