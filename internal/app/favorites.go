package app

import (
	"net/http"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

func (app *Application) ToggleFavorite(w http.ResponseWriter, r *http.Request, showId string) {
	_, err := app.catalogue.GetShow(r.Context(), showId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.FavoriteResponse{
		ShowId:   showId,
		Favorite: app.toggleFavorite(r, showId),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ListFavorites returns the favourite shows in the order they were marked.
// Shows that left the catalogue are skipped.
func (app *Application) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids := app.favoriteShowIds(r)
	shows := make([]*domain.Show, 0, len(ids))

	for _, id := range ids {
		show, err := app.catalogue.GetShow(r.Context(), id)
		if err != nil {
			continue
		}

		shows = append(shows, show)
	}

	resp := api.ShowListResponse{
		Shows: toShowSummaries(shows),
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
