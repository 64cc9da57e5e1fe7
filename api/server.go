package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface is implemented by the application handlers. Path
// parameters are decoded before the handler runs.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)

	ListShows(w http.ResponseWriter, r *http.Request)
	GetShow(w http.ResponseWriter, r *http.Request, showId string)
	GetShowTimesByDate(w http.ResponseWriter, r *http.Request, showId string, date openapi_types.Date)

	GetSeatLayout(w http.ResponseWriter, r *http.Request, showId string)
	GetSelection(w http.ResponseWriter, r *http.Request, showId string)
	ResetSelection(w http.ResponseWriter, r *http.Request, showId string)
	SelectTime(w http.ResponseWriter, r *http.Request, showId string)
	ToggleSeat(w http.ResponseWriter, r *http.Request, showId string, seatId string)
	ConfirmSelection(w http.ResponseWriter, r *http.Request, showId string)

	ToggleFavorite(w http.ResponseWriter, r *http.Request, showId string)
	ListFavorites(w http.ResponseWriter, r *http.Request)
	ListTrailers(w http.ResponseWriter, r *http.Request)

	ListBookings(w http.ResponseWriter, r *http.Request)
	CancelBooking(w http.ResponseWriter, r *http.Request, bookingId string)
	CreatePaymentLink(w http.ResponseWriter, r *http.Request, bookingId string)
	GetTicket(w http.ResponseWriter, r *http.Request, bookingId string)

	StripeWebhook(w http.ResponseWriter, r *http.Request)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func bindPathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return &InvalidParamFormatError{ParamName: name, Err: err}
	}

	return nil
}

// withShowId decodes the showId path parameter before calling fn.
func (siw *ServerInterfaceWrapper) withShowId(fn func(w http.ResponseWriter, r *http.Request, showId string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var showId string

		if err := bindPathParam(r, "showId", &showId); err != nil {
			siw.ErrorHandlerFunc(w, r, err)
			return
		}

		fn(w, r, showId)
	}
}

func (siw *ServerInterfaceWrapper) withBookingId(fn func(w http.ResponseWriter, r *http.Request, bookingId string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bookingId string

		if err := bindPathParam(r, "bookingId", &bookingId); err != nil {
			siw.ErrorHandlerFunc(w, r, err)
			return
		}

		fn(w, r, bookingId)
	}
}

func (siw *ServerInterfaceWrapper) GetShowTimesByDate(w http.ResponseWriter, r *http.Request) {
	var (
		showId string
		date   openapi_types.Date
	)

	if err := bindPathParam(r, "showId", &showId); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	if err := bindPathParam(r, "date", &date); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	siw.Handler.GetShowTimesByDate(w, r, showId, date)
}

func (siw *ServerInterfaceWrapper) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	var showId, seatId string

	if err := bindPathParam(r, "showId", &showId); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	if err := bindPathParam(r, "seatId", &seatId); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	siw.Handler.ToggleSeat(w, r, showId, seatId)
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	base := options.BaseURL

	r.Get(base+"/healthcheck", si.GetHealth)

	r.Get(base+"/shows", si.ListShows)
	r.Get(base+"/shows/{showId}", wrapper.withShowId(si.GetShow))
	r.Get(base+"/shows/{showId}/dates/{date}", wrapper.GetShowTimesByDate)

	r.Get(base+"/shows/{showId}/layout", wrapper.withShowId(si.GetSeatLayout))
	r.Get(base+"/shows/{showId}/selection", wrapper.withShowId(si.GetSelection))
	r.Delete(base+"/shows/{showId}/selection", wrapper.withShowId(si.ResetSelection))
	r.Put(base+"/shows/{showId}/selection/time", wrapper.withShowId(si.SelectTime))
	r.Post(base+"/shows/{showId}/selection/seats/{seatId}", wrapper.ToggleSeat)
	r.Post(base+"/shows/{showId}/selection/confirm", wrapper.withShowId(si.ConfirmSelection))

	r.Put(base+"/shows/{showId}/favorite", wrapper.withShowId(si.ToggleFavorite))
	r.Get(base+"/favorites", si.ListFavorites)
	r.Get(base+"/trailers", si.ListTrailers)

	r.Get(base+"/bookings", si.ListBookings)
	r.Delete(base+"/bookings/{bookingId}", wrapper.withBookingId(si.CancelBooking))
	r.Post(base+"/bookings/{bookingId}/payment-link", wrapper.withBookingId(si.CreatePaymentLink))
	r.Get(base+"/bookings/{bookingId}/ticket.png", wrapper.withBookingId(si.GetTicket))

	r.Post(base+"/webhooks/stripe", si.StripeWebhook)

	return r
}
