package app

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

const bookingReceiptTemplate = "booking_receipt.tmpl"

func (app *Application) GetSeatLayout(w http.ResponseWriter, r *http.Request, showId string) {
	selection, err := app.selections.State(r.Context(), app.selectionKey(r, showId))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := toSeatLayoutResponse(selection)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSelection(w http.ResponseWriter, r *http.Request, showId string) {
	selection, err := app.selections.State(r.Context(), app.selectionKey(r, showId))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSelection(w, r, selection)
}

func (app *Application) ResetSelection(w http.ResponseWriter, r *http.Request, showId string) {
	selection, err := app.selections.Reset(r.Context(), app.selectionKey(r, showId))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSelection(w, r, selection)
}

func (app *Application) SelectTime(w http.ResponseWriter, r *http.Request, showId string) {
	var input api.SelectTimeRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("body must not be empty")
		}
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	selection, err := app.selections.SelectTime(r.Context(), app.selectionKey(r, showId), input.TimeId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSelection(w, r, selection)
}

func (app *Application) ToggleSeat(w http.ResponseWriter, r *http.Request, showId string, seatId string) {
	selection, err := app.selections.ToggleSeat(r.Context(), app.selectionKey(r, showId), seatId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSelection(w, r, selection)
}

// ConfirmSelection books the selected seats. The body is optional, an email
// address in it receives the booking receipt.
func (app *Application) ConfirmSelection(w http.ResponseWriter, r *http.Request, showId string) {
	var input api.ConfirmSelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ownerId := app.contextGetOwner(r)

	booking, err := app.selections.Confirm(r.Context(), app.selectionKey(r, showId), ownerId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.metrics.bookingConfirmed(r.Context(), len(booking.BookedSeats))

	if input.Email != nil {
		app.sendBookingReceipt(r, *input.Email, booking)
	}

	resp := api.ConfirmSelectionResponse{
		BookingId: booking.ID,
		Amount:    booking.Amount.StringFixed(2),
		Currency:  booking.Currency,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) sendBookingReceipt(r *http.Request, recipient string, booking *domain.Booking) {
	logger := app.contextGetLogger(r).With("booking_id", booking.ID)

	data := map[string]any{
		"BookingID":  booking.ID,
		"MovieTitle": booking.MovieTitle,
		"ShowTime":   booking.ShowTime.Format("Mon, 02 Jan 2006 15:04"),
		"Seats":      joinSeatIds(booking.BookedSeats),
		"Amount":     booking.Amount.StringFixed(2),
		"Currency":   booking.Currency,
	}

	app.background(logger, func() {
		err := app.mailer.Send(recipient, bookingReceiptTemplate, data)
		if err != nil {
			logger.Error("failed to send booking receipt", "error", err)
		}
	})
}

func (app *Application) writeSelection(w http.ResponseWriter, r *http.Request, selection *domain.SeatSelection) {
	resp := app.toSelectionResponse(selection)

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) toSelectionResponse(selection *domain.SeatSelection) api.SelectionResponse {
	resp := api.SelectionResponse{
		ShowId:        selection.ShowID,
		Status:        toApiSelectionStatus(selection.Status()),
		SelectedSeats: toSeatIdStrings(selection.SelectedSeats),
		OccupiedSeats: toSeatIdStrings(selection.OccupiedSeats),
		Loading:       selection.Loading,
		Degraded:      selection.Degraded,
		TotalPrice:    app.prices.Total(len(selection.SelectedSeats)).StringFixed(2),
		Currency:      app.prices.Currency,
	}

	if selection.SelectedTime != nil {
		slot := toTimeSlot(*selection.SelectedTime)
		resp.SelectedTime = &slot
	}

	return resp
}

func toApiSelectionStatus(status domain.SelectionStatus) api.SelectionStatus {
	switch status {
	case domain.StatusTimeSelected:
		return api.TimeSelected
	case domain.StatusSeatsPicked:
		return api.SeatsPicked
	default:
		return api.NoTimeSelected
	}
}

// toSeatLayoutResponse annotates the hall layout with the state of the
// selection. Without a selected time every seat is free.
func toSeatLayoutResponse(selection *domain.SeatSelection) api.SeatLayoutResponse {
	layout := domain.GenerateLayout()
	groups := make([]api.RowGroup, len(layout))

	for i, group := range layout {
		rows := make([]api.SeatRow, len(group.Rows))

		for j, row := range group.Rows {
			seats := make([]api.Seat, len(row.Seats))

			for k, seat := range row.Seats {
				seats[k] = api.Seat{
					Id:       seat.String(),
					Occupied: selection.IsOccupied(seat),
					Selected: selection.IsSelected(seat),
				}
			}

			rows[j] = api.SeatRow{Row: row.Row, Seats: seats}
		}

		groups[i] = api.RowGroup{Rows: rows}
	}

	resp := api.SeatLayoutResponse{
		ShowId:    selection.ShowID,
		Loading:   selection.Loading,
		Degraded:  selection.Degraded,
		RowGroups: groups,
	}

	if selection.SelectedTime != nil {
		slot := toTimeSlot(*selection.SelectedTime)
		resp.SelectedTime = &slot
	}

	return resp
}

func toSeatIdStrings(seats []domain.SeatID) []string {
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.String()
	}

	return ids
}

func joinSeatIds(seats []domain.SeatID) string {
	return strings.Join(toSeatIdStrings(seats), ", ")
}
