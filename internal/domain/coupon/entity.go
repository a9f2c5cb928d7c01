// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount code with a finite number of uses
type Coupon struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Discount  decimal.Decimal `gorm:"type:decimal(5,2);not null;check:discount >= 0 AND discount <= 100" json:"discount"`
	UsesLimit int             `gorm:"not null;default:0;check:uses_limit >= 0" json:"uses_limit"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsUsable reports whether the coupon can be applied at the given time
func (c *Coupon) IsUsable(now time.Time) bool {
	if !c.IsActive || c.UsesLimit <= 0 {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
