package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ContentTypeJSON is set on every published task context.
const ContentTypeJSON = "application/json"

// ErrClosed is returned when the channel is closed while waiting on it.
var ErrClosed = errors.New("amqp channel closed")

// Channel is the subset of *amqp.Channel used by this package.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp.Table,
	) (<-chan amqp.Delivery, error)
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Connection wraps an AMQP connection.
type Connection struct {
	conn *amqp.Connection
}

// Connect dials the broker at url.
func Connect(url string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &Connection{conn: conn}, nil
}

// Channel opens a new channel. Publishers and consumers should not share one.
func (c *Connection) Channel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return ch, nil
}

// Close closes the connection and every channel opened on it.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// DeclareQueue declares a durable queue.
func DeclareQueue(ch Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Ping reports ErrClosed once the connection has been closed.
func (c *Connection) Ping() error {
	if c.conn.IsClosed() {
		return ErrClosed
	}
	return nil
}
