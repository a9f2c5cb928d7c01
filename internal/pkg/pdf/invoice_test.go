package pdf

import (
	"testing"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{CompanyName: "Eltech", CompanyEmail: "support@eltech.test"}}
	g := NewInvoiceGenerator(cfg)
	g.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }

	o := &order.Order{
		OrderNumber:    "ORD-20240501-00007",
		Email:          "jane@example.com",
		Status:         order.OrderStatusPending,
		PaymentMethod:  order.PaymentCashOnDelivery,
		Subtotal:       decimal.RequireFromString("100"),
		DiscountAmount: decimal.RequireFromString("10"),
		TotalPrice:     decimal.RequireFromString("90"),
		CouponCode:     "SAVE10",
		ShippingAddress: order.Address{
			FullName: "Jane <Doe>", Phone: "555", AddressLine: "1 Main St", City: "Sofia", PostalCode: "1000", Country: "BG",
		},
		Items: []order.OrderItem{{
			ProductName: "Pixel", Quantity: 2,
			UnitPrice: decimal.RequireFromString("50"), TotalPrice: decimal.RequireFromString("100"),
		}},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	out, err := g.RenderHTML(o)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "INV-ORD-20240501-00007")
	assert.Contains(t, html, "May 2, 2024")
	assert.Contains(t, html, "$50.00")
	assert.Contains(t, html, "-$10.00")
	assert.Contains(t, html, "Discount (SAVE10)")
	assert.Contains(t, html, "$90.00")
	assert.Contains(t, html, "Jane &lt;Doe&gt;")
	assert.Contains(t, html, "support@eltech.test")
}
