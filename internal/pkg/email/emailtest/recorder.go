// Package emailtest provides an in-memory email.Sender for tests.
package emailtest

import (
	"context"
	"sync"

	"github.com/eltech/store-backend/internal/pkg/email"
)

// Recorder keeps every email it is asked to send
type Recorder struct {
	mu   sync.Mutex
	sent []email.Email
	Err  error
}

// SendEmail records the email, or returns Err when set
func (r *Recorder) SendEmail(_ context.Context, e *email.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, *e)
	return nil
}

// Sent returns a copy of the recorded emails
func (r *Recorder) Sent() []email.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Email(nil), r.sent...)
}

// SentOfType filters recorded emails by type
func (r *Recorder) SentOfType(t email.EmailType) []email.Email {
	var out []email.Email
	for _, e := range r.Sent() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
