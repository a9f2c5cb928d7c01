package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	sent []*Email
}

func (c *captureSender) SendEmail(_ context.Context, e *Email) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, e)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Eltech"},
		Email: config.EmailConfig{
			Provider:    "log",
			FromEmail:   "noreply@eltech.test",
			FromName:    "Eltech",
			BaseURL:     "https://shop.eltech.test",
			TemplateDir: t.TempDir(),
		},
		Security: config.SecurityConfig{
			EmailVerificationExpiry:  24 * time.Hour,
			PasswordResetTokenExpiry: time.Hour,
		},
	}
}

func TestMailerBuiltInTemplates(t *testing.T) {
	sender := &captureSender{}
	m, err := NewMailer(testConfig(t), sender, logging.Discard())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, m.SendEmailVerification(ctx, "ada@example.com", "Ada", "tok-1"))
	require.NoError(t, m.SendPasswordReset(ctx, "ada@example.com", "Ada", "tok-2"))
	require.NoError(t, m.SendRestockAlert(ctx, "ada@example.com", "Ada", "Kettle", 7))
	require.NoError(t, m.SendNewsletterSubscribed(ctx, "news@example.com"))

	require.Len(t, sender.sent, 4)

	verify := sender.sent[0]
	assert.Equal(t, EmailTypeEmailVerification, verify.Type)
	assert.Equal(t, []string{"ada@example.com"}, verify.To)
	assert.Contains(t, verify.HTMLContent, "https://shop.eltech.test/verify-email?token=tok-1")
	assert.Contains(t, verify.HTMLContent, "24 hours")
	assert.Contains(t, verify.HTMLContent, "Hello Ada")

	assert.Contains(t, sender.sent[1].HTMLContent, "/reset-password?token=tok-2")
	assert.Contains(t, sender.sent[1].HTMLContent, "1 hour")

	restock := sender.sent[2]
	assert.Equal(t, "Kettle is back in stock", restock.Subject)
	assert.Contains(t, restock.HTMLContent, "https://shop.eltech.test/products/7")

	assert.Contains(t, sender.sent[3].HTMLContent, "Hello there")
}

func TestMailerOrderConfirmation(t *testing.T) {
	sender := &captureSender{}
	m, err := NewMailer(testConfig(t), sender, logging.Discard())
	require.NoError(t, err)

	err = m.SendOrderConfirmation(context.Background(), "ada@example.com", "Ada", OrderConfirmationData{
		OrderID:     3,
		OrderNumber: "ORD-20240101-00003",
		Items: []OrderLine{{
			Name:      "Kettle",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("10.50"),
			Total:     decimal.RequireFromString("21.00"),
		}},
		Subtotal:   decimal.RequireFromString("21.00"),
		Discount:   decimal.RequireFromString("2.10"),
		Total:      decimal.RequireFromString("18.90"),
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, "Order Confirmation - ORD-20240101-00003", sent.Subject)
	assert.Contains(t, sent.HTMLContent, "Kettle")
	assert.Contains(t, sent.HTMLContent, "10.50")
	assert.Contains(t, sent.HTMLContent, "SAVE10")
	assert.Contains(t, sent.HTMLContent, "18.90")
	assert.Contains(t, sent.HTMLContent, "https://shop.eltech.test/orders/3")
	assert.Equal(t, "18.90", sent.Data["order_total"])
}

func TestMailerPrefersTemplateDir(t *testing.T) {
	cfg := testConfig(t)
	custom := `<p>Status of {{.OrderNumber}}: {{.Status}}</p>`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Email.TemplateDir, "order_status_update.html"), []byte(custom), 0o644))

	sender := &captureSender{}
	m, err := NewMailer(cfg, sender, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, m.SendOrderStatusUpdate(context.Background(), "ada@example.com", "Ada", OrderStatusUpdateData{
		OrderID: 1, OrderNumber: "ORD-1", Status: "shipped",
	}))
	assert.Equal(t, "<p>Status of ORD-1: shipped</p>", sender.sent[0].HTMLContent)
}

func TestEmailServiceResend(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Email.Provider = "resend"
	cfg.Email.APIKey = "key-123"
	s := NewEmailService(cfg, logging.Discard())
	s.resendURL = srv.URL

	err := s.SendEmail(context.Background(), &Email{To: []string{"ada@example.com"}, Subject: "Hi", HTMLContent: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Eltech <noreply@eltech.test>", got.From)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
}

func TestEmailServiceSendGridFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Email.Provider = "sendgrid"
	cfg.Email.APIKey = "nope"
	s := NewEmailService(cfg, logging.Discard())
	s.sendgridURL = srv.URL

	err := s.SendEmail(context.Background(), &Email{To: []string{"ada@example.com"}, Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestEmailServiceValidation(t *testing.T) {
	cfg := testConfig(t)
	s := NewEmailService(cfg, logging.Discard())

	assert.Error(t, s.SendEmail(context.Background(), &Email{Subject: "nobody"}))
	assert.NoError(t, s.SendEmail(context.Background(), &Email{To: []string{"a@b.c"}, Subject: "logged"}))

	cfg.Email.Provider = "resend"
	assert.ErrorContains(t, s.SendEmail(context.Background(), &Email{To: []string{"a@b.c"}}), "API key")
}

func TestBuildMIMEMessage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Email.ReplyTo = "help@eltech.test"
	s := NewEmailService(cfg, logging.Discard())

	msg := string(s.buildMIMEMessage(&Email{To: []string{"a@b.c", "d@e.f"}, Subject: "Hi", HTMLContent: "<b>x</b>"}))
	assert.Contains(t, msg, "From: Eltech <noreply@eltech.test>\r\n")
	assert.Contains(t, msg, "To: a@b.c, d@e.f\r\n")
	assert.Contains(t, msg, "Reply-To: help@eltech.test\r\n")
	assert.NotContains(t, msg, "Cc:")
	assert.Contains(t, msg, "\r\n\r\n<b>x</b>")
}
