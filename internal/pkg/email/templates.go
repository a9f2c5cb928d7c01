package email

// layoutTemplate wraps every built-in template body
const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
        {{template "content" .}}
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            &copy; {{.Year}} {{.SiteName}}. Questions? <a href="{{.SupportURL}}">Contact support</a>.
        </p>
    </div>
</body>
</html>{{end}}`

var defaultContent = map[EmailType]string{
	EmailTypeEmailVerification: `{{define "content"}}
        <p>Please confirm your email address by clicking the link below.</p>
        <p><a href="{{.VerificationURL}}">Verify my email</a></p>
        <p>This link expires in {{.ExpiryTime}}.</p>
{{end}}`,

	EmailTypePasswordReset: `{{define "content"}}
        <p>We received a request to reset your password.</p>
        <p><a href="{{.ResetURL}}">Choose a new password</a></p>
        <p>This link expires in {{.ExpiryTime}}. If you did not ask for it you can ignore this email.</p>
{{end}}`,

	EmailTypeOrderConfirmation: `{{define "content"}}
        <p>Thank you for your order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
        <table style="width: 100%; border-collapse: collapse;">
            <tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
            {{range .Items}}<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.UnitPrice.StringFixed 2}}</td><td align="right">{{.Total.StringFixed 2}}</td></tr>
            {{end}}
        </table>
        <p>Subtotal: {{.Subtotal.StringFixed 2}}<br>
        {{if .CouponCode}}Discount ({{.CouponCode}}): -{{.Discount.StringFixed 2}}<br>{{end}}
        <strong>Total: {{.Total.StringFixed 2}}</strong></p>
        <p>Payment: {{.PaymentMethod}}<br>Ship to: {{.ShippingAddress}}</p>
        <p><a href="{{.OrderURL}}">View your order</a></p>
{{end}}`,

	EmailTypeOrderStatusUpdate: `{{define "content"}}
        <p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
        {{if .StatusMessage}}<p>{{.StatusMessage}}</p>{{end}}
        <p><a href="{{.OrderURL}}">View your order</a></p>
{{end}}`,

	EmailTypeRestockAlert: `{{define "content"}}
        <p>Good news: <strong>{{.ProductName}}</strong> is back in stock.</p>
        <p><a href="{{.ProductURL}}">Get it before it sells out</a></p>
{{end}}`,

	EmailTypeNewsletterSubscribed: `{{define "content"}}
        <p>You are now subscribed to the {{.SiteName}} newsletter.</p>
        <p>Changed your mind? <a href="{{.UnsubscribeURL}}">Unsubscribe</a>.</p>
{{end}}`,
}
