package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventSource is recorded on events that arrived over AMQP.
const EventSource = "amqp"

// Consumer delivers queued task contexts to an event emitter.
type Consumer struct {
	ch       Channel
	emitter  events.EventEmitter
	prefetch int
	logger   *slog.Logger
}

// NewConsumer creates a consumer that allows up to prefetch unacknowledged
// deliveries at once.
func NewConsumer(ch Channel, emitter events.EventEmitter, prefetch int, logger *slog.Logger) *Consumer {
	if prefetch < 1 {
		prefetch = 1
	}
	return &Consumer{
		ch:       ch,
		emitter:  emitter,
		prefetch: prefetch,
		logger:   logger.With("component", "amqp_consumer"),
	}
}

// Run consumes queue until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context, queue string) error {
	if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consuming tasks", "queue", queue, "prefetch", c.prefetch)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped", "queue", queue)
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrClosed
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery settles d exactly once. Deliveries that can never succeed are
// rejected without requeue; retryable failures go back on the queue.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	log := c.logger.With("message_id", d.MessageId, "task_type", d.Type)

	event, err := events.NewTaskRequestEvent(d.Type, EventSource, d.Body)
	if err != nil {
		c.reject(log, d, "rejecting undecodable delivery", err)
		return
	}
	if id, err := uuid.Parse(d.MessageId); err == nil {
		event.ID = id
	} else {
		log.Warn("delivery has no usable message id, redeliveries will not be deduplicated")
	}
	if !d.Timestamp.IsZero() {
		event.CreatedAt = d.Timestamp
	}

	if err := c.emitter.EmitEvent(ctx, event); err != nil {
		if errors.Is(err, events.ErrUnprocessable) {
			c.reject(log, d, "rejecting unprocessable delivery", err)
			return
		}
		log.Warn("failed to hand off task, requeueing", "error", err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack delivery", "error", nackErr)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("failed to ack delivery", "error", err)
	}
}

func (c *Consumer) reject(log *slog.Logger, d amqp.Delivery, msg string, cause error) {
	log.Error(msg, "error", cause)
	if err := d.Reject(false); err != nil {
		log.Error("failed to reject delivery", "error", err)
	}
}
