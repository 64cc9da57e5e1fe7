// Package events publishes booking lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/cinex/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Each event type goes to a durable queue of the same name on the default
// exchange.
var queues = []string{
	domain.EventBookingConfirmed,
	domain.EventBookingCancelled,
}

type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("rabbitmq queue declare %s: %w", q, err)
		}
	}

	return &AMQPPublisher{
		conn: conn,
		ch:   ch,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	msg, err := publishing(event)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx, "", event.Type, false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ch.Close()
	return p.conn.Close()
}

func publishing(event domain.BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID + ":" + event.Type,
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

// LogPublisher logs events instead of sending them. It is used when no broker
// is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{
		logger: logger,
	}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	p.logger.Info("booking event",
		"type", event.Type,
		"booking_id", event.BookingID,
		"show_id", event.ShowID,
		"time_id", event.TimeID,
		"seats", event.Seats)

	return nil
}
