// internal/infrastructure/messaging/rabbitmq/connection.go
package rabbitmq

import (
	"context"
	"fmt"

	"github.com/eltech/store-backend/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AttemptHeader counts delivery attempts of an email message
const AttemptHeader = "x-attempt"

// Publisher is the part of *amqp.Channel used to publish messages
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection holds the broker connection and one channel with the email queue declared
type Connection struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
	Queue   string
}

// NewConnection dials RabbitMQ, opens a channel and declares the durable email queue
func NewConnection(cfg *config.Config, logger *logrus.Logger) (*Connection, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQ.EmailQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.RabbitMQ.EmailQueue, err)
	}

	logger.WithField("queue", cfg.RabbitMQ.EmailQueue).Info("RabbitMQ connection established")
	return &Connection{conn: conn, Channel: ch, Queue: cfg.RabbitMQ.EmailQueue}, nil
}

// Health reports whether the connection is still open
func (c *Connection) Health() error {
	if c.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	if err := c.Channel.Close(); err != nil && err != amqp.ErrClosed {
		return err
	}
	return c.conn.Close()
}
