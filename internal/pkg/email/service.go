// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// Sender delivers a rendered email
type Sender interface {
	SendEmail(ctx context.Context, email *Email) error
}

// EmailService delivers email through the configured provider
type EmailService struct {
	config *config.Config
	client *http.Client
	logger *logrus.Logger

	resendURL   string
	sendgridURL string
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:      logger,
		resendURL:   "https://api.resend.com/emails",
		sendgridURL: "https://api.sendgrid.com/v3/mail/send",
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	case "sendgrid":
		return s.sendSendGridEmail(ctx, email)
	case "log":
		s.logger.WithFields(logrus.Fields{
			"to":      strings.Join(email.To, ","),
			"subject": email.Subject,
			"type":    email.Type,
			"data":    email.Data,
		}).Info("Email delivery skipped by log provider")
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

func (s *EmailService) fromAddress() string {
	if s.config.Email.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}
	return s.config.Email.FromEmail
}
