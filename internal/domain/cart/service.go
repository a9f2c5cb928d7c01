// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	coupons *coupon.Service
	logger  *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, coupons *coupon.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		coupons: coupons,
		logger:  logger,
	}
}

// CouponService exposes the coupon lookups used by the cart
func (s *Service) CouponService() *coupon.Service {
	return s.coupons
}

// CartItemResponse represents a cart line with product details
type CartItemResponse struct {
	ProductID  uint                   `json:"product_id"`
	Quantity   int                    `json:"quantity"`
	Price      decimal.Decimal        `json:"price"`
	TotalPrice decimal.Decimal        `json:"total_price"`
	Stock      int                    `json:"stock"`
	Product    product.ProductSummary `json:"product"`
	AddedAt    time.Time              `json:"added_at"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	ID         uint               `json:"id"`
	UserID     uint               `json:"user_id"`
	Items      []CartItemResponse `json:"items"`
	CouponCode string             `json:"coupon_code,omitempty"`
	Discount   decimal.Decimal    `json:"discount_percent"`
	Totals     CartTotals         `json:"totals"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// ApplyCouponRequest represents apply coupon request
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetCart returns the user's cart, creating it on first use
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, c.ID)
}

// AddToCart adds quantity to the product's line. The resulting quantity may not exceed stock.
func (s *Service) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod product.Product
		if err := tx.First(&prod, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return fmt.Errorf("failed to find product: %w", err)
		}

		var item CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", c.ID, req.ProductID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if req.Quantity > prod.Stock {
				return ErrInsufficientStock
			}
			item = CartItem{CartID: c.ID, ProductID: req.ProductID, Quantity: req.Quantity}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to find cart item: %w", err)
		default:
			newQuantity := item.Quantity + req.Quantity
			if newQuantity > prod.Stock {
				return ErrInsufficientStock
			}
			if err := tx.Model(&CartItem{}).Where("id = ?", item.ID).Update("quantity", newQuantity).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		}
		return touch(tx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, c.ID)
}

// UpdateCartItem overwrites the quantity of a line. Zero removes it.
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID uint, quantity int) (*CartResponse, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item CartItem
		if err := tx.Preload("Product").Where("cart_id = ? AND product_id = ?", c.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to find cart item: %w", err)
		}

		if quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return fmt.Errorf("failed to remove cart item: %w", err)
			}
			return touch(tx, c.ID)
		}

		if item.Product == nil || quantity > item.Product.Stock {
			return ErrInsufficientStock
		}
		if err := tx.Model(&CartItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return touch(tx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, c.ID)
}

// RemoveFromCart deletes a line
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID uint) (*CartResponse, error) {
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", c.ID, productID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	if err := touch(s.db.WithContext(ctx), c.ID); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, c.ID)
}

// ClearCart removes every line and the coupon
func (s *Service) ClearCart(ctx context.Context, userID uint) (*CartResponse, error) {
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Empty(tx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, c.ID)
}

// ApplyCoupon attaches a usable coupon. A failed lookup leaves the cart untouched.
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, code string) (*CartResponse, error) {
	found, err := s.coupons.FindUsable(ctx, code)
	if err != nil {
		return nil, err
	}
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&Cart{}).Where("id = ?", c.ID).Update("coupon_id", found.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "coupon": found.Code}).Info("Coupon applied to cart")
	return s.buildResponse(ctx, c.ID)
}

// RemoveCoupon detaches the coupon from the cart
func (s *Service) RemoveCoupon(ctx context.Context, userID uint) (*CartResponse, error) {
	c, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&Cart{}).Where("id = ?", c.ID).Update("coupon_id", nil).Error; err != nil {
		return nil, fmt.Errorf("failed to remove coupon: %w", err)
	}
	return s.buildResponse(ctx, c.ID)
}

// Empty deletes the lines of a cart and unsets its coupon inside tx
func Empty(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := tx.Model(&Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"coupon_id":  nil,
		"updated_at": time.Now().UTC(),
	}).Error; err != nil {
		return fmt.Errorf("failed to reset cart: %w", err)
	}
	return nil
}

func (s *Service) ensureCart(ctx context.Context, userID uint) (*Cart, error) {
	db := s.db.WithContext(ctx)
	var c Cart
	err := db.Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// a concurrent request may create the same cart; whichever row lands first wins
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&Cart{UserID: userID}).Error
		if err == nil {
			err = db.Where("user_id = ?", userID).First(&c).Error
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &c, nil
}

func (s *Service) buildResponse(ctx context.Context, cartID uint) (*CartResponse, error) {
	var c Cart
	err := s.db.WithContext(ctx).
		Preload("Coupon").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&c, cartID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	resp := &CartResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]CartItemResponse, 0, len(c.Items)),
		Discount:  decimal.Zero,
		UpdatedAt: c.UpdatedAt,
	}

	lines := make([]Line, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Product.Price,
			TotalPrice: item.Product.Price.Mul(qty).Round(2),
			Stock:      item.Product.Stock,
			Product:    item.Product.Summary(),
			AddedAt:    item.CreatedAt,
		})
		lines = append(lines, Line{Price: item.Product.Price, Quantity: item.Quantity})
	}

	if c.Coupon != nil {
		resp.CouponCode = c.Coupon.Code
		resp.Discount = c.Coupon.Discount
	}
	resp.Totals = CalculateTotals(lines, resp.Discount)
	return resp, nil
}

func touch(tx *gorm.DB, cartID uint) error {
	if err := tx.Model(&Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
