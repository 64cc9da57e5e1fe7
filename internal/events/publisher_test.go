package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/metinatakli/cinex/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() domain.BookingEvent {
	return domain.NewBookingEvent(domain.EventBookingConfirmed, &domain.Booking{
		ID:          "b-1",
		ShowID:      "show-1",
		TimeID:      "show-1-0725-1800",
		MovieTitle:  "In the Lost Lands",
		BookedSeats: []domain.SeatID{"A1", "A2"},
		Amount:      decimal.NewFromInt(24),
		Currency:    "USD",
	})
}

func TestPublishing(t *testing.T) {
	msg, err := publishing(testEvent())
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "b-1:booking.confirmed", msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "booking.confirmed", body["type"])
	assert.Equal(t, "24.00", body["amount"])
	assert.Equal(t, []any{"A1", "A2"}, body["seats"])
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	assert.Contains(t, buf.String(), "booking_id=b-1")
	assert.Contains(t, buf.String(), "type=booking.confirmed")
}
