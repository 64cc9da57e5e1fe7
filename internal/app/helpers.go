package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinex/internal/jsonutil"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

// contextGetLogger returns the application logger annotated with the request
// it serves.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	return app.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"uri", r.URL.RequestURI(),
	)
}

// background runs fn in a goroutine that is awaited on shutdown. Panics are
// logged instead of crashing the server.
func (app *Application) background(logger *slog.Logger, fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic in background task", "panic", err)
			}
		}()

		fn()
	}()
}
