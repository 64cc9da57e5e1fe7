package app

import (
	"net/http"
	"slices"

	"github.com/metinatakli/cinex/internal/domain"
)

type sessionKey string

const (
	SessionKeyGuest     = sessionKey("guest")
	SessionKeyFavorites = sessionKey("favorites")
)

func (s sessionKey) String() string {
	return string(s)
}

// contextGetOwner returns the guest id kept in the session. It owns the
// selections and bookings made in the session and, unlike the session token,
// is safe to store and hand to payment providers.
func (app *Application) contextGetOwner(r *http.Request) string {
	guestID := app.sessionManager.GetString(r.Context(), SessionKeyGuest.String())
	if guestID == "" {
		panic("missing guest id in request session")
	}

	return guestID
}

func (app *Application) selectionKey(r *http.Request, showId string) domain.SelectionKey {
	return domain.SelectionKey{
		SessionID: app.contextGetOwner(r),
		ShowID:    showId,
	}
}

func (app *Application) favoriteShowIds(r *http.Request) []string {
	ids, ok := app.sessionManager.Get(r.Context(), SessionKeyFavorites.String()).([]string)
	if !ok {
		return []string{}
	}

	return slices.Clone(ids)
}

// toggleFavorite flips the favourite flag of the show and reports the new
// state.
func (app *Application) toggleFavorite(r *http.Request, showId string) bool {
	ids := app.favoriteShowIds(r)

	idx := slices.Index(ids, showId)
	if idx >= 0 {
		ids = slices.Delete(ids, idx, idx+1)
	} else {
		ids = append(ids, showId)
	}

	app.sessionManager.Put(r.Context(), SessionKeyFavorites.String(), ids)

	return idx < 0
}
