package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher dials the broker per event. Booking confirmations are rare enough
// that a long-lived connection is not worth its reconnect handling.
type RabbitPublisher struct {
	queue string
	open  func() (Channel, io.Closer, error)
}

func NewRabbitPublisher(url, queue string) *RabbitPublisher {
	if queue == "" {
		queue = DefaultBookingQueue
	}

	return &RabbitPublisher{
		queue: queue,
		open: func() (Channel, io.Closer, error) {
			conn, err := amqp.Dial(url)
			if err != nil {
				return nil, nil, fmt.Errorf("dial broker: %w", err)
			}

			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				return nil, nil, fmt.Errorf("open channel: %w", err)
			}

			return ch, conn, nil
		},
	}
}

// PublishBookingConfirmed sends event as a persistent JSON message through the default
// exchange, routed by queue name.
func (p *RabbitPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	ch, conn, err := p.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = ch.Close()
		if conn != nil {
			_ = conn.Close()
		}
	}()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     event.OrderID,
		CorrelationId: event.RequestID,
		Type:          "BookingConfirmed",
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}

	slog.InfoContext(ctx, "booking confirmed event published",
		slog.String("order_id", event.OrderID), slog.String("queue", p.queue))

	return nil
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	slog.DebugContext(ctx, "no broker configured, booking event dropped", slog.String("order_id", event.OrderID))
	return nil
}
