// internal/domain/favorite/entity.go
package favorite

import (
	"time"

	"github.com/eltech/store-backend/internal/domain/product"
)

// Favorite marks a product a user wants to keep an eye on
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteResponse is a favorite with its product summary
type FavoriteResponse struct {
	ID          uint                   `json:"id"`
	ProductID   uint                   `json:"product_id"`
	Product     product.ProductSummary `json:"product"`
	IsAvailable bool                   `json:"is_available"`
	AddedAt     time.Time              `json:"added_at"`
}

func (f *Favorite) response() FavoriteResponse {
	resp := FavoriteResponse{ID: f.ID, ProductID: f.ProductID, AddedAt: f.CreatedAt}
	if f.Product != nil {
		resp.Product = f.Product.Summary()
		resp.IsAvailable = f.Product.IsInStock()
	}
	return resp
}
