package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/email/emailtest"
	"github.com/eltech/store-backend/internal/pkg/logging"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}
func (f *fakeAck) Reject(_ uint64, requeue bool) error { return f.Nack(0, false, requeue) }

func delivery(t *testing.T, ack *fakeAck, e *email.Email, attempt int32) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Headers: amqp.Table{AttemptHeader: attempt}}
}

var welcome = &email.Email{To: []string{"jane@example.com"}, Subject: "Hi", Type: email.EmailTypeNewsletterSubscribed}

func TestPublisher(t *testing.T) {
	ch := &fakeChannel{}
	p := NewEmailPublisher(ch, "emails")

	require.NoError(t, p.SendEmail(context.Background(), welcome))
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "emails", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, int32(1), msg.Headers[AttemptHeader])

	var decoded email.Email
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, welcome.To, decoded.To)

	assert.Error(t, p.SendEmail(context.Background(), &email.Email{}))
	ch.err = errors.New("channel closed")
	assert.Error(t, p.SendEmail(context.Background(), welcome))
}

func TestConsumerDelivers(t *testing.T) {
	rec := &emailtest.Recorder{}
	ch := &fakeChannel{}
	c := NewEmailConsumer(rec, NewEmailPublisher(ch, "emails"), 3, logging.Discard())

	ack := &fakeAck{}
	c.Handle(context.Background(), delivery(t, ack, welcome, 1))
	assert.True(t, ack.acked)
	assert.Len(t, rec.Sent(), 1)
	assert.Empty(t, ch.published)
}

func TestConsumerDropsMalformed(t *testing.T) {
	c := NewEmailConsumer(&emailtest.Recorder{}, NewEmailPublisher(&fakeChannel{}, "emails"), 3, logging.Discard())
	ack := &fakeAck{}
	c.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{nope")})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestConsumerRetriesThenGivesUp(t *testing.T) {
	rec := &emailtest.Recorder{Err: errors.New("provider down")}
	ch := &fakeChannel{}
	c := NewEmailConsumer(rec, NewEmailPublisher(ch, "emails"), 3, logging.Discard())

	ack := &fakeAck{}
	c.Handle(context.Background(), delivery(t, ack, welcome, 2))
	assert.True(t, ack.acked, "the original is acked once the retry is queued")
	require.Len(t, ch.published, 1)
	assert.Equal(t, int32(3), ch.published[0].Headers[AttemptHeader])

	last := &fakeAck{}
	c.Handle(context.Background(), delivery(t, last, welcome, 3))
	assert.True(t, last.nacked)
	assert.False(t, last.requeued)
	assert.Len(t, ch.published, 1)
}

func TestConsumerRequeuesWhenRetryPublishFails(t *testing.T) {
	rec := &emailtest.Recorder{Err: errors.New("provider down")}
	c := NewEmailConsumer(rec, NewEmailPublisher(&fakeChannel{err: errors.New("closed")}, "emails"), 3, logging.Discard())

	ack := &fakeAck{}
	c.Handle(context.Background(), delivery(t, ack, welcome, 1))
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}
