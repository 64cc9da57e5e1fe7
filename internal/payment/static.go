package payment

import (
	"context"
	"net/url"

	"github.com/metinatakli/cinex/internal/domain"
)

// StaticPaymentProvider links to a fixed pay page with the booking id as a
// query parameter. It is used when Stripe is not configured.
type StaticPaymentProvider struct {
	baseURL string
}

func NewStaticPaymentProvider(baseURL string) *StaticPaymentProvider {
	return &StaticPaymentProvider{
		baseURL: baseURL,
	}
}

func (p *StaticPaymentProvider) CreatePaymentLink(ctx context.Context, booking *domain.Booking) (*domain.PaymentLink, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("booking", booking.ID)
	u.RawQuery = q.Encode()

	return &domain.PaymentLink{ID: booking.ID, URL: u.String()}, nil
}
