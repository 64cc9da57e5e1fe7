package app

import (
	"net/http"
	"strconv"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

func (app *Application) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := app.bookings.List(r.Context(), app.contextGetOwner(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingListResponse{
		Bookings: make([]api.Booking, len(bookings)),
	}

	for i, booking := range bookings {
		resp.Bookings[i] = toApiBooking(booking)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelBooking removes a paid booking and releases its seats.
func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request, bookingId string) {
	err := app.bookings.Cancel(r.Context(), app.contextGetOwner(r), bookingId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.metrics.bookingCancelled(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) GetTicket(w http.ResponseWriter, r *http.Request, bookingId string) {
	png, err := app.bookings.TicketPNG(r.Context(), app.contextGetOwner(r), bookingId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	_, err = w.Write(png)
	if err != nil {
		app.logError(r, err)
	}
}

func toApiBooking(booking *domain.Booking) api.Booking {
	return api.Booking{
		Id:          booking.ID,
		ShowId:      booking.ShowID,
		TimeId:      booking.TimeID,
		ShowTime:    booking.ShowTime,
		MovieTitle:  booking.MovieTitle,
		PosterUrl:   booking.PosterURL,
		Runtime:     booking.Runtime,
		BookedSeats: toSeatIdStrings(booking.BookedSeats),
		Amount:      booking.Amount.StringFixed(2),
		Currency:    booking.Currency,
		IsPaid:      booking.IsPaid,
		PaymentLink: booking.PaymentLink,
		CreatedAt:   booking.CreatedAt,
	}
}
