package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNotConfirmed is returned when the broker nacks a publish.
var ErrNotConfirmed = errors.New("publish was not confirmed by the broker")

// Publisher publishes task contexts to the default exchange and waits for
// the broker to confirm each one.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	confirms chan amqp.Confirmation
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher puts ch into confirm mode.
func NewPublisher(ch Channel, logger *slog.Logger) (*Publisher, error) {
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to enable publish confirmations: %w", err)
	}
	return &Publisher{
		ch:       ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		logger:   logger.With("component", "amqp_publisher"),
		now:      time.Now,
	}, nil
}

// Publish sends body with taskType as the message type and returns the
// message id once the broker has confirmed it.
func (p *Publisher) Publish(ctx context.Context, routingKey, taskType string, body []byte) (uuid.UUID, error) {
	id := uuid.New()

	// Confirmations arrive in publish order; one publish in flight at a time
	// keeps each confirmation paired with its message.
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(
		ctx,
		"",         // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  ContentTypeJSON,
			DeliveryMode: amqp.Persistent,
			MessageId:    id.String(),
			Type:         taskType,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirmed, ok := <-p.confirms:
		if !ok {
			return uuid.Nil, ErrClosed
		}
		if !confirmed.Ack {
			return uuid.Nil, ErrNotConfirmed
		}
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("waiting for publish confirmation: %w", ctx.Err())
	}

	p.logger.DebugContext(ctx, "published task",
		"message_id", id,
		"task_type", taskType,
		"routing_key", routingKey)

	return id, nil
}
