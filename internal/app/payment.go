package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/payment"
)

const maxWebhookBodyBytes = 65536

// CreatePaymentLink creates (or renews) the hosted payment page of an unpaid
// booking.
func (app *Application) CreatePaymentLink(w http.ResponseWriter, r *http.Request, bookingId string) {
	booking, err := app.bookings.AttachPaymentLink(r.Context(), app.contextGetOwner(r), bookingId, app.paymentProvider)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentLinkResponse{
		BookingId:   booking.ID,
		PaymentLink: *booking.PaymentLink,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhook marks bookings paid once Stripe reports a completed
// checkout. Events that concern no booking of ours are acknowledged so
// Stripe stops retrying them.
func (app *Application) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if app.config.Stripe.WebhookSecret == "" {
		app.notFoundResponse(w, r)
		return
	}

	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook body: %w", err))
		return
	}

	bookingId, err := payment.PaidBookingFromWebhook(payload, r.Header.Get("Stripe-Signature"), app.config.Stripe.WebhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrUnhandledEvent) {
			w.WriteHeader(http.StatusOK)
			return
		}

		logger.Warn("rejected stripe webhook", "error", err)
		app.badRequestResponse(w, r, errors.New("invalid webhook payload or signature"))
		return
	}

	err = app.bookings.MarkPaid(r.Context(), bookingId)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			logger.Warn("payment received for unknown booking", "booking_id", bookingId)
			w.WriteHeader(http.StatusOK)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	app.metrics.bookingPaid(r.Context())
	logger.Info("booking paid", "booking_id", bookingId)

	w.WriteHeader(http.StatusOK)
}
