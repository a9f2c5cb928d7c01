// internal/pkg/email/types.go
package email

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmailType identifies a transactional message and its template
type EmailType string

const (
	EmailTypeEmailVerification    EmailType = "email_verification"
	EmailTypePasswordReset        EmailType = "password_reset"
	EmailTypeOrderConfirmation    EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate    EmailType = "order_status_update"
	EmailTypeRestockAlert         EmailType = "restock_alert"
	EmailTypeNewsletterSubscribed EmailType = "newsletter_subscribed"
)

// AllTypes lists every template the mailer knows about
var AllTypes = []EmailType{
	EmailTypeEmailVerification,
	EmailTypePasswordReset,
	EmailTypeOrderConfirmation,
	EmailTypeOrderStatusUpdate,
	EmailTypeRestockAlert,
	EmailTypeNewsletterSubscribed,
}

// Email is a rendered message. It is also the payload of the email queue.
type Email struct {
	To          []string               `json:"to"`
	CC          []string               `json:"cc,omitempty"`
	BCC         []string               `json:"bcc,omitempty"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	TextContent string                 `json:"text_content,omitempty"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName   string
	SiteURL    string
	SupportURL string
	UserName   string
	UserEmail  string
	Year       int
}

// EmailVerificationData feeds the email_verification template
type EmailVerificationData struct {
	EmailTemplateData
	VerificationURL string
	ExpiryTime      string
}

// PasswordResetData feeds the password_reset template
type PasswordResetData struct {
	EmailTemplateData
	ResetURL   string
	ExpiryTime string
}

// OrderLine is one row of the order confirmation table
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// OrderConfirmationData feeds the order_confirmation template
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID         uint
	OrderNumber     string
	OrderDate       string
	OrderURL        string
	Items           []OrderLine
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	CouponCode      string
	PaymentMethod   string
	ShippingAddress string
}

// OrderStatusUpdateData feeds the order_status_update template
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderID       uint
	OrderNumber   string
	Status        string
	StatusMessage string
	OrderURL      string
}

// RestockAlertData feeds the restock_alert template
type RestockAlertData struct {
	EmailTemplateData
	ProductName string
	ProductURL  string
}

// NewsletterData feeds the newsletter_subscribed template
type NewsletterData struct {
	EmailTemplateData
	UnsubscribeURL string
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	if userName == "" {
		userName = "there"
	}
	return EmailTemplateData{
		SiteName:   siteName,
		SiteURL:    siteURL,
		SupportURL: siteURL + "/support",
		UserName:   userName,
		UserEmail:  userEmail,
		Year:       time.Now().Year(),
	}
}
