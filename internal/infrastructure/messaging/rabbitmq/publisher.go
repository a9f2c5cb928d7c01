// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/eltech/store-backend/internal/pkg/email"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailPublisher is an email.Sender that queues emails for cmd/notifier
type EmailPublisher struct {
	mu    sync.Mutex
	ch    Publisher
	queue string
}

// NewEmailPublisher creates a publisher on the default exchange routed to queue
func NewEmailPublisher(ch Publisher, queue string) *EmailPublisher {
	return &EmailPublisher{ch: ch, queue: queue}
}

// SendEmail publishes the email as a persistent JSON message
func (p *EmailPublisher) SendEmail(ctx context.Context, e *email.Email) error {
	if len(e.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	return p.publish(ctx, e, 1)
}

func (p *EmailPublisher) publish(ctx context.Context, e *email.Email, attempt int) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(e.Type),
		Headers:      amqp.Table{AttemptHeader: int32(attempt)},
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish email: %w", err)
	}
	return nil
}
