package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"droply/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ExchangeName is the fanout exchange every marketplace event goes through.
// Consumers (push, SMS, email workers) bind their own queues to it.
const ExchangeName = "droply_events"

// RabbitNotifier implements Notifier over a RabbitMQ fanout exchange.
type RabbitNotifier struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *zap.Logger
}

// NewRabbitNotifier connects, opens a channel and declares the exchange.
func NewRabbitNotifier(url string, logger *zap.Logger) (*RabbitNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ExchangeName,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", ExchangeName, err)
	}

	return &RabbitNotifier{conn: conn, channel: ch, logger: logger}, nil
}

// Publish serializes the event and sends it to the fanout exchange.
func (n *RabbitNotifier) Publish(ctx context.Context, event models.Event) error {
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = n.channel.PublishWithContext(ctx,
		ExchangeName,
		"", // fanout ignores the routing key
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   event.EmittedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	n.logger.Debug("event published",
		zap.String("type", event.Type),
		zap.String("shipmentId", event.ShipmentID))
	return nil
}

// Healthy reports whether the broker connection is still open. Used by the
// health monitor.
func (n *RabbitNotifier) Healthy(ctx context.Context) error {
	if n.conn == nil || n.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	return nil
}

// Close tears down the channel and connection.
func (n *RabbitNotifier) Close() {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}

// NoopNotifier drops every event. Used when RabbitMQ is not configured and
// in tests that don't assert on notifications.
type NoopNotifier struct{}

func (NoopNotifier) Publish(ctx context.Context, event models.Event) error { return nil }
