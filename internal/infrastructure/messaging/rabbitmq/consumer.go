// internal/infrastructure/messaging/rabbitmq/consumer.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eltech/store-backend/internal/pkg/email"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EmailConsumer delivers queued emails through a provider-backed Sender
type EmailConsumer struct {
	sender      email.Sender
	retry       *EmailPublisher
	maxAttempts int
	logger      *logrus.Logger
}

// NewEmailConsumer creates a consumer. Failed deliveries are republished through retry.
func NewEmailConsumer(sender email.Sender, retry *EmailPublisher, maxAttempts int, logger *logrus.Logger) *EmailConsumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &EmailConsumer{sender: sender, retry: retry, maxAttempts: maxAttempts, logger: logger}
}

// Run consumes the queue with manual acks until ctx is done or the channel closes
func (c *EmailConsumer) Run(ctx context.Context, ch *amqp.Channel, queue string, prefetch int) error {
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	c.logger.WithField("queue", queue).Info("Email consumer started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery.
// Malformed payloads are dropped. Provider errors are retried by republishing
// with an incremented attempt header until maxAttempts is reached.
func (c *EmailConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	var e email.Email
	if err := json.Unmarshal(d.Body, &e); err != nil {
		c.logger.WithError(err).Error("Dropping malformed email message")
		_ = d.Nack(false, false)
		return
	}

	attempt := attemptOf(d.Headers)
	entry := c.logger.WithFields(logrus.Fields{
		"to":      strings.Join(e.To, ","),
		"type":    e.Type,
		"attempt": attempt,
	})

	err := c.sender.SendEmail(ctx, &e)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			entry.WithError(ackErr).Warn("Failed to ack email message")
		}
		entry.Info("Email delivered")
		return
	}

	if attempt >= c.maxAttempts {
		entry.WithError(err).Error("Email delivery failed, giving up")
		_ = d.Nack(false, false)
		return
	}

	if pubErr := c.retry.publish(ctx, &e, attempt+1); pubErr != nil {
		entry.WithError(pubErr).Warn("Failed to schedule email retry, requeueing")
		_ = d.Nack(false, true)
		return
	}
	entry.WithError(err).Warn("Email delivery failed, retry scheduled")
	_ = d.Ack(false)
}

func attemptOf(headers amqp.Table) int {
	switch v := headers[AttemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}
