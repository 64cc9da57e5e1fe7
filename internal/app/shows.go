package app

import (
	"net/http"
	"slices"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/oapi-codegen/runtime/types"
)

const dateLayout = "2006-01-02"

func (app *Application) ListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := app.catalogue.ListShows(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowListResponse{
		Shows: toShowSummaries(shows),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShow(w http.ResponseWriter, r *http.Request, showId string) {
	show, err := app.catalogue.GetShow(r.Context(), showId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.ShowDetailResponse{
		Show: toShowDetail(show),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetShowTimesByDate answers an empty list for dates the show is not
// screened on.
func (app *Application) GetShowTimesByDate(w http.ResponseWriter, r *http.Request, showId string, date types.Date) {
	dateTimes, err := app.catalogue.GetDateTimes(r.Context(), showId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.ShowTimesResponse{
		ShowId: showId,
		Date:   date,
		Times:  toTimeSlots(dateTimes[date.Format(dateLayout)]),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toShowSummaries(shows []*domain.Show) []api.ShowSummary {
	summaries := make([]api.ShowSummary, len(shows))

	for i, show := range shows {
		summaries[i] = toShowSummary(show)
	}

	return summaries
}

func toShowSummary(show *domain.Show) api.ShowSummary {
	if show == nil {
		return api.ShowSummary{}
	}

	return api.ShowSummary{
		Id:          show.ID,
		Title:       show.Movie.Title,
		PosterUrl:   show.Movie.PosterURL,
		BackdropUrl: show.Movie.BackdropURL,
		Genres:      nonNil(show.Movie.Genres),
		Rating:      show.Movie.Rating,
		Runtime:     show.Movie.Runtime,
		ReleaseDate: types.Date{Time: show.Movie.ReleaseDate},
	}
}

func toShowDetail(show *domain.Show) api.ShowDetail {
	dateTimes := make(map[string][]api.TimeSlot, len(show.DateTimes))
	for date, slots := range show.DateTimes {
		dateTimes[date] = toTimeSlots(slots)
	}

	return api.ShowDetail{
		Id:          show.ID,
		Title:       show.Movie.Title,
		Overview:    show.Movie.Overview,
		PosterUrl:   show.Movie.PosterURL,
		BackdropUrl: show.Movie.BackdropURL,
		TrailerUrl:  show.Movie.TrailerURL,
		Genres:      nonNil(show.Movie.Genres),
		Cast:        toCastMembers(show.Movie.Cast),
		Language:    show.Movie.Language,
		Rating:      show.Movie.Rating,
		Runtime:     show.Movie.Runtime,
		ReleaseDate: types.Date{Time: show.Movie.ReleaseDate},
		DateTimes:   dateTimes,
	}
}

func toCastMembers(cast []domain.CastMember) []api.CastMember {
	res := make([]api.CastMember, len(cast))

	for i, member := range cast {
		res[i] = api.CastMember{Name: member.Name}
		if member.ProfileURL != "" {
			res[i].ProfileUrl = &member.ProfileURL
		}
	}

	return res
}

func toTimeSlots(slots []domain.TimeSlot) []api.TimeSlot {
	res := make([]api.TimeSlot, len(slots))

	for i, slot := range slots {
		res[i] = toTimeSlot(slot)
	}

	return res
}

func toTimeSlot(slot domain.TimeSlot) api.TimeSlot {
	return api.TimeSlot{
		Time:   slot.Time,
		TimeId: slot.TimeID,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return slices.Clone(s)
}
