package app

import (
	"net/http"

	"github.com/metinatakli/cinex/api"
)

func (app *Application) ListTrailers(w http.ResponseWriter, r *http.Request) {
	trailers, err := app.catalogue.ListTrailers(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TrailerListResponse{
		Trailers: make([]api.Trailer, len(trailers)),
	}

	for i, trailer := range trailers {
		resp.Trailers[i] = api.Trailer{
			Id:       trailer.ID,
			Title:    trailer.Title,
			ImageUrl: trailer.ImageURL,
			VideoUrl: trailer.VideoURL,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
