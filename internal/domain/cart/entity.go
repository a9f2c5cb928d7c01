// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Cart is the single shopping cart of a user
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CouponID  *uint     `gorm:"index" json:"coupon_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Coupon *coupon.Coupon `gorm:"foreignKey:CouponID;constraint:OnDelete:SET NULL;" json:"coupon,omitempty"`
	Items  []CartItem     `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem is one product line of a cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// Line is the priced input of CalculateTotals
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount      int             `json:"item_count"`
	TotalQuantity  int             `json:"total_quantity"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// CalculateTotals prices lines and applies a percentage discount to the subtotal
func CalculateTotals(lines []Line, discountPercent decimal.Decimal) CartTotals {
	totals := CartTotals{ItemCount: len(lines)}
	subtotal := decimal.Zero
	for _, l := range lines {
		totals.TotalQuantity += l.Quantity
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	totals.SubTotal = subtotal.Round(2)
	totals.TotalAmount = coupon.ApplyDiscount(subtotal, discountPercent)
	totals.DiscountAmount = totals.SubTotal.Sub(totals.TotalAmount)
	return totals
}
