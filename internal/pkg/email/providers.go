// internal/pkg/email/providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	BCC     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To  []sendGridAddress `json:"to"`
	CC  []sendGridAddress `json:"cc,omitempty"`
	BCC []sendGridAddress `json:"bcc,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	Categories       []string                  `json:"categories,omitempty"`
}

// sendResendEmail sends email through the Resend HTTP API
func (s *EmailService) sendResendEmail(ctx context.Context, email *Email) error {
	if s.config.Email.APIKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	payload := resendRequest{
		From:    s.fromAddress(),
		To:      email.To,
		CC:      email.CC,
		BCC:     email.BCC,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		Text:    email.TextContent,
		ReplyTo: s.config.Email.ReplyTo,
	}

	return s.postJSON(ctx, "resend", s.resendURL, payload, http.StatusOK)
}

// sendSendGridEmail sends email through the SendGrid v3 API
func (s *EmailService) sendSendGridEmail(ctx context.Context, email *Email) error {
	if s.config.Email.APIKey == "" {
		return fmt.Errorf("sendgrid API key not configured")
	}

	content := []sendGridContent{}
	if email.TextContent != "" {
		content = append(content, sendGridContent{Type: "text/plain", Value: email.TextContent})
	}
	content = append(content, sendGridContent{Type: "text/html", Value: email.HTMLContent})

	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{{
			To:  sendGridAddresses(email.To),
			CC:  sendGridAddresses(email.CC),
			BCC: sendGridAddresses(email.BCC),
		}},
		From: sendGridAddress{
			Email: s.config.Email.FromEmail,
			Name:  s.config.Email.FromName,
		},
		Subject: email.Subject,
		Content: content,
	}
	if email.Type != "" {
		payload.Categories = []string{string(email.Type)}
	}
	if s.config.Email.ReplyTo != "" {
		payload.ReplyTo = &sendGridAddress{Email: s.config.Email.ReplyTo}
	}

	return s.postJSON(ctx, "sendgrid", s.sendgridURL, payload, http.StatusAccepted)
}

func (s *EmailService) postJSON(ctx context.Context, provider, url string, payload interface{}, wantStatus int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", provider, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Email.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s API returned status %d: %s", provider, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

func sendGridAddresses(addrs []string) []sendGridAddress {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]sendGridAddress, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, sendGridAddress{Email: a})
	}
	return out
}
