// Package catalogue serves the show catalogue and trailer gallery from
// fixtures embedded in the binary.
package catalogue

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

//go:embed fixtures/*.json
var fixtures embed.FS

type movieRecord struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview"`
	PosterURL   string       `json:"posterUrl"`
	BackdropURL string       `json:"backdropUrl"`
	TrailerURL  string       `json:"trailerUrl"`
	Genres      []string     `json:"genres"`
	Cast        []castRecord `json:"cast"`
	Language    string       `json:"language"`
	ReleaseDate types.Date   `json:"releaseDate"`
	Runtime     int          `json:"runtime"`
	Rating      float64      `json:"rating"`
}

type castRecord struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
}

type showRecord struct {
	ID        string                       `json:"id"`
	Movie     movieRecord                  `json:"movie"`
	DateTimes map[string][]domain.TimeSlot `json:"dateTimes"`
}

type trailerRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
}

type FixtureCatalogue struct {
	shows    []*domain.Show
	byID     map[string]*domain.Show
	trailers []domain.Trailer
}

func NewFixtureCatalogue() (*FixtureCatalogue, error) {
	var showRecords []showRecord
	if err := readFixture("fixtures/shows.json", &showRecords); err != nil {
		return nil, err
	}

	var trailerRecords []trailerRecord
	if err := readFixture("fixtures/trailers.json", &trailerRecords); err != nil {
		return nil, err
	}

	c := &FixtureCatalogue{
		byID: make(map[string]*domain.Show, len(showRecords)),
	}

	for _, rec := range showRecords {
		show := toShow(rec)
		c.shows = append(c.shows, show)
		c.byID[show.ID] = show
	}

	for _, rec := range trailerRecords {
		c.trailers = append(c.trailers, domain.Trailer(rec))
	}

	return c, nil
}

func readFixture(name string, v any) error {
	data, err := fixtures.ReadFile(name)
	if err != nil {
		return err
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return nil
}

func toShow(rec showRecord) *domain.Show {
	dateTimes := make(domain.DateTimes, len(rec.DateTimes))
	for date, slots := range rec.DateTimes {
		sorted := slices.Clone(slots)
		slices.SortFunc(sorted, func(a, b domain.TimeSlot) int {
			return a.Time.Compare(b.Time)
		})
		dateTimes[date] = sorted
	}

	return &domain.Show{
		ID: rec.ID,
		Movie: domain.Movie{
			ID:          rec.Movie.ID,
			Title:       rec.Movie.Title,
			Overview:    rec.Movie.Overview,
			PosterURL:   rec.Movie.PosterURL,
			BackdropURL: rec.Movie.BackdropURL,
			TrailerURL:  rec.Movie.TrailerURL,
			Genres:      rec.Movie.Genres,
			Cast:        toCast(rec.Movie.Cast),
			Language:    rec.Movie.Language,
			ReleaseDate: rec.Movie.ReleaseDate.Time,
			Runtime:     rec.Movie.Runtime,
			Rating:      rec.Movie.Rating,
		},
		DateTimes: dateTimes,
	}
}

func (c *FixtureCatalogue) ListShows(ctx context.Context) ([]*domain.Show, error) {
	return slices.Clone(c.shows), nil
}

func (c *FixtureCatalogue) GetShow(ctx context.Context, showID string) (*domain.Show, error) {
	show, ok := c.byID[showID]
	if !ok {
		return nil, domain.ErrShowNotFound
	}

	return show, nil
}

func (c *FixtureCatalogue) GetDateTimes(ctx context.Context, showID string) (domain.DateTimes, error) {
	show, err := c.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	return maps.Clone(show.DateTimes), nil
}

func (c *FixtureCatalogue) ListTrailers(ctx context.Context) ([]domain.Trailer, error) {
	return slices.Clone(c.trailers), nil
}

func toCast(records []castRecord) []domain.CastMember {
	cast := make([]domain.CastMember, len(records))

	for i, rec := range records {
		cast[i] = domain.CastMember{Name: rec.Name, ProfileURL: rec.ProfileURL}
	}

	return cast
}
