package app

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/api"
	appmiddleware "github.com/metinatakli/cinex/internal/middleware"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ensureGuestUserSession gives every visitor a committed session holding a
// random guest id, which owns the selections and bookings of the session.
func (app *Application) ensureGuestUserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guestID := app.sessionManager.GetString(r.Context(), SessionKeyGuest.String())

		if guestID == "" {
			app.sessionManager.Put(r.Context(), SessionKeyGuest.String(), uuid.New().String())

			_, _, err := app.sessionManager.Commit(r.Context())
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) validateRequest() func(http.Handler) http.Handler {
	doc, err := api.GetSwagger()
	if err != nil {
		panic(err)
	}

	mw, err := appmiddleware.ValidateRequest(doc, app.openapiErrorResponse)
	if err != nil {
		panic(err)
	}

	return mw
}
