package domain

import "context"

type PaymentLink struct {
	ID  string
	URL string
}

type PaymentLinkProvider interface {
	CreatePaymentLink(ctx context.Context, booking *Booking) (*PaymentLink, error)
}
