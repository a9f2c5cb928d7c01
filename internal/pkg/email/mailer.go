// internal/pkg/email/mailer.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// Mailer renders transactional templates and hands them to a Sender
type Mailer struct {
	config    *config.Config
	sender    Sender
	logger    *logrus.Logger
	templates map[EmailType]*template.Template
}

// NewMailer loads templates from the template dir, falling back to built-ins
func NewMailer(cfg *config.Config, sender Sender, logger *logrus.Logger) (*Mailer, error) {
	m := &Mailer{
		config:    cfg,
		sender:    sender,
		logger:    logger,
		templates: make(map[EmailType]*template.Template, len(AllTypes)),
	}
	if err := m.loadTemplates(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mailer) loadTemplates() error {
	for _, name := range AllTypes {
		path := filepath.Join(m.config.Email.TemplateDir, string(name)+".html")
		if _, err := os.Stat(path); err == nil {
			tmpl, err := template.ParseFiles(path)
			if err != nil {
				return fmt.Errorf("failed to parse template %s: %w", path, err)
			}
			m.templates[name] = tmpl
			continue
		}

		tmpl, err := template.New(string(name)).Parse(`{{template "layout" .}}` + layoutTemplate + defaultContent[name])
		if err != nil {
			return fmt.Errorf("failed to parse built-in template %s: %w", name, err)
		}
		m.logger.WithField("template", name).Debug("Using built-in email template")
		m.templates[name] = tmpl
	}
	return nil
}

func (m *Mailer) render(name EmailType, data interface{}) (string, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) send(ctx context.Context, to, subject string, name EmailType, data interface{}, meta map[string]interface{}) error {
	html, err := m.render(name, data)
	if err != nil {
		return err
	}

	return m.sender.SendEmail(ctx, &Email{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: html,
		Type:        name,
		Data:        meta,
	})
}

func (m *Mailer) base(userName, userEmail string) EmailTemplateData {
	return GetBaseTemplateData(m.config.App.Name, m.config.Email.BaseURL, userName, userEmail)
}

func (m *Mailer) link(path string, query url.Values) string {
	u := m.config.Email.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// SendEmailVerification sends the verify-your-address link
func (m *Mailer) SendEmailVerification(ctx context.Context, to, userName, token string) error {
	data := EmailVerificationData{
		EmailTemplateData: m.base(userName, to),
		VerificationURL:   m.link("/verify-email", url.Values{"token": {token}}),
		ExpiryTime:        humanDuration(m.config.Security.EmailVerificationExpiry),
	}
	return m.send(ctx, to, "Verify Your Email Address", EmailTypeEmailVerification, data, nil)
}

// SendPasswordReset sends the reset link
func (m *Mailer) SendPasswordReset(ctx context.Context, to, userName, token string) error {
	data := PasswordResetData{
		EmailTemplateData: m.base(userName, to),
		ResetURL:          m.link("/reset-password", url.Values{"token": {token}}),
		ExpiryTime:        humanDuration(m.config.Security.PasswordResetTokenExpiry),
	}
	return m.send(ctx, to, "Reset Your Password", EmailTypePasswordReset, data, nil)
}

// SendNewsletterSubscribed confirms a newsletter subscription
func (m *Mailer) SendNewsletterSubscribed(ctx context.Context, to string) error {
	data := NewsletterData{
		EmailTemplateData: m.base("", to),
		UnsubscribeURL:    m.link("/unsubscribe", url.Values{"email": {to}}),
	}
	return m.send(ctx, to, fmt.Sprintf("Welcome to the %s newsletter", m.config.App.Name), EmailTypeNewsletterSubscribed, data, nil)
}

// SendOrderConfirmation sends the receipt of a freshly placed order
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to, userName string, data OrderConfirmationData) error {
	data.EmailTemplateData = m.base(userName, to)
	data.OrderURL = m.link(fmt.Sprintf("/orders/%d", data.OrderID), nil)

	meta := map[string]interface{}{
		"order_number": data.OrderNumber,
		"order_total":  data.Total.StringFixed(2),
	}
	return m.send(ctx, to, fmt.Sprintf("Order Confirmation - %s", data.OrderNumber), EmailTypeOrderConfirmation, data, meta)
}

// SendOrderStatusUpdate tells the customer their order moved to a new status
func (m *Mailer) SendOrderStatusUpdate(ctx context.Context, to, userName string, data OrderStatusUpdateData) error {
	data.EmailTemplateData = m.base(userName, to)
	data.OrderURL = m.link(fmt.Sprintf("/orders/%d", data.OrderID), nil)

	meta := map[string]interface{}{
		"order_number": data.OrderNumber,
		"status":       data.Status,
	}
	return m.send(ctx, to, fmt.Sprintf("Order Update - %s", data.OrderNumber), EmailTypeOrderStatusUpdate, data, meta)
}

// SendRestockAlert tells a waiting customer that a product is available again
func (m *Mailer) SendRestockAlert(ctx context.Context, to, userName, productName string, productID uint) error {
	data := RestockAlertData{
		EmailTemplateData: m.base(userName, to),
		ProductName:       productName,
		ProductURL:        m.link(fmt.Sprintf("/products/%d", productID), nil),
	}
	meta := map[string]interface{}{"product_id": productID}
	return m.send(ctx, to, fmt.Sprintf("%s is back in stock", productName), EmailTypeRestockAlert, data, meta)
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%(24*time.Hour) == 0:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", days)
	case d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
