// internal/domain/restock/entity.go
package restock

import (
	"time"

	"github.com/eltech/store-backend/internal/domain/product"
)

// Notification is a user's request to hear when a sold-out product returns
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_restock_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_restock_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name
func (Notification) TableName() string {
	return "restock_notifications"
}
