// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
)

// Order events published to the admin feed
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// Order is a placed, immutable-priced purchase
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Email         string        `gorm:"not null;size:255" json:"email"`
	Status        OrderStatus   `gorm:"not null;default:'pending';size:20;index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"not null;size:30" json:"payment_method"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CouponID       *uint           `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode     string          `gorm:"size:50" json:"coupon_code,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a snapshot of a purchased product line
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// Address is the shipping destination embedded in Order
type Address struct {
	FullName    string `gorm:"size:200" json:"full_name" binding:"required,max=200"`
	Phone       string `gorm:"size:30" json:"phone" binding:"required,max=30"`
	AddressLine string `gorm:"size:255" json:"address_line" binding:"required,max=255"`
	City        string `gorm:"size:100" json:"city" binding:"required,max=100"`
	PostalCode  string `gorm:"size:20" json:"postal_code" binding:"required,max=20"`
	Country     string `gorm:"size:100" json:"country" binding:"required,max=100"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber formats the public order number: ORD-YYYYMMDD-XXXXX
func (o *Order) GenerateOrderNumber(at time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), o.ID)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// CanTransitionTo reports whether to is a legal next status
func (o *Order) CanTransitionTo(to OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s names a known status
func IsValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether m is accepted at checkout
func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCashOnDelivery || m == PaymentCard
}

// StatusMessage is the customer-facing sentence for a status
func StatusMessage(s OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "We have received your order and are preparing it."
	case OrderStatusShipped:
		return "Your order is on its way."
	case OrderStatusDelivered:
		return "Your order has been delivered. Enjoy!"
	case OrderStatusCancelled:
		return "Your order has been cancelled."
	}
	return ""
}
