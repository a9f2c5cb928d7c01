// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products and posts
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Image     string    `gorm:"size:500" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a sellable catalog item
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	IsHot       bool            `gorm:"default:false" json:"is_hot"`
	IsOnSale    bool            `gorm:"default:false" json:"is_on_sale"`
	SaleAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"sale_amount"`
	IsFeatured  bool            `gorm:"default:false;index" json:"is_featured"`
	IsTrending  bool            `gorm:"default:false;index" json:"is_trending"`
	ViewCount   int64           `gorm:"default:0" json:"view_count"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Features []ProductFeature `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"features,omitempty"`
}

// ProductImage is a stored picture of a product
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Image     string    `gorm:"not null;size:500" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductFeature is one bullet of a product's feature list
type ProductFeature struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Feature   string    `gorm:"not null;size:255" json:"feature"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating is a user's 1..5 score of a product, one per user and product
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_ratings_user_product;index" json:"product_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// Review is free-text feedback on a product
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author  *ReviewAuthor `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Product *Product      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// ReviewAuthor is the public slice of a user shown next to a review
type ReviewAuthor struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

// WeeklyDeal promotes one product until deal_time
type WeeklyDeal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	DealTime  time.Time `gorm:"not null;index" json:"deal_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides
func (Category) TableName() string       { return "categories" }
func (Product) TableName() string        { return "products" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductFeature) TableName() string { return "product_features" }
func (Rating) TableName() string         { return "ratings" }
func (Review) TableName() string         { return "reviews" }
func (ReviewAuthor) TableName() string   { return "users" }
func (WeeklyDeal) TableName() string     { return "weekly_deals" }

// IsInStock reports whether at least one unit can be sold
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// FirstImage returns the oldest image path, or "" when there is none
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].Image
}

// ProductSummary is the list view of a product
type ProductSummary struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	IsHot      bool            `json:"is_hot"`
	IsOnSale   bool            `json:"is_on_sale"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	Image      string          `json:"image"`
}

// Summary projects a product into its list view
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		IsHot:      p.IsHot,
		IsOnSale:   p.IsOnSale,
		SaleAmount: p.SaleAmount,
		Image:      p.FirstImage(),
	}
}

// ProductDetail is the full view of a product with its rating aggregate
type ProductDetail struct {
	Product
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}
