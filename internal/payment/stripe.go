package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const bookingIDKey = "booking_id"

var ErrUnhandledEvent = errors.New("unhandled stripe event")

type StripePaymentProvider struct {
	failureUrl string
	successUrl string
}

func NewStripePaymentProvider(apiKey, failureUrl, successUrl string) *StripePaymentProvider {
	stripe.Key = apiKey

	return &StripePaymentProvider{
		failureUrl: failureUrl,
		successUrl: successUrl,
	}
}

// CreatePaymentLink opens a hosted Stripe Checkout session with one line item
// per booked seat.
func (s *StripePaymentProvider) CreatePaymentLink(ctx context.Context, booking *domain.Booking) (*domain.PaymentLink, error) {
	params := checkoutParams(booking, s.successUrl, s.failureUrl)
	params.Context = ctx

	cs, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &domain.PaymentLink{ID: cs.ID, URL: cs.URL}, nil
}

func checkoutParams(booking *domain.Booking, successUrl, failureUrl string) *stripe.CheckoutSessionParams {
	var lineItems []*stripe.CheckoutSessionLineItemParams

	seatPrice := decimal.Zero
	if n := len(booking.BookedSeats); n > 0 {
		seatPrice = booking.Amount.Div(decimal.NewFromInt(int64(n)))
	}
	priceCents := seatPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	currency := strings.ToLower(booking.Currency)

	for _, seat := range booking.BookedSeats {
		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(priceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s - Seat %s", booking.MovieTitle, seat)),
					Description: stripe.String(fmt.Sprintf(
						"Showtime: %s",
						booking.ShowTime.Format("Jan 2, 2006 15:04"),
					)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	return &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successUrl),
		CancelURL:  stripe.String(failureUrl),
		Metadata: map[string]string{
			bookingIDKey: booking.ID,
		},
		ClientReferenceID: stripe.String(booking.ID),
	}
}

// PaidBookingFromWebhook verifies the signature of a Stripe notification and
// returns the id of the booking a completed checkout paid for. Other event
// types yield ErrUnhandledEvent.
func PaidBookingFromWebhook(payload []byte, signature, secret string) (string, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return "", fmt.Errorf("invalid stripe signature: %w", err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return "", ErrUnhandledEvent
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return "", fmt.Errorf("failed to decode checkout session: %w", err)
	}

	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return "", ErrUnhandledEvent
	}

	bookingID := cs.Metadata[bookingIDKey]
	if bookingID == "" {
		bookingID = cs.ClientReferenceID
	}
	if bookingID == "" {
		return "", fmt.Errorf("checkout session %s carries no booking id", cs.ID)
	}

	return bookingID, nil
}
