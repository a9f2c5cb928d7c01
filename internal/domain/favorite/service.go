// internal/domain/favorite/service.go
package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrFavoriteNotFound = apperr.New(apperr.ErrNotFound, "favorite not found")
	ErrAlreadyFavorite  = apperr.New(apperr.ErrInvalid, "product already in favorites")
)

// Service handles favorite business logic
type Service struct {
	db     *gorm.DB
	carts  *cart.Service
	logger *logrus.Logger
}

// NewService creates a new favorite service
func NewService(db *gorm.DB, carts *cart.Service, logger *logrus.Logger) *Service {
	return &Service{db: db, carts: carts, logger: logger}
}

// AddFavoriteRequest represents add to favorites request
type AddFavoriteRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// MoveToCartRequest represents the quantity moved into the cart
type MoveToCartRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1"`
}

// List returns the caller's favorites, newest first
func (s *Service) List(ctx context.Context, userID uint) ([]FavoriteResponse, error) {
	var favorites []Favorite
	err := s.preloaded(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve favorites: %w", err)
	}

	out := make([]FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		out = append(out, favorites[i].response())
	}
	return out, nil
}

// Get returns one of the caller's favorites
func (s *Service) Get(ctx context.Context, userID, id uint) (*FavoriteResponse, error) {
	f, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := f.response()
	return &resp, nil
}

// Add marks a product as favorite
func (s *Service) Add(ctx context.Context, userID uint, req *AddFavoriteRequest) (*FavoriteResponse, error) {
	var created Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&product.Product{}).Where("id = ?", req.ProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if count == 0 {
			return product.ErrProductNotFound
		}

		if err := tx.Model(&Favorite{}).Where("user_id = ? AND product_id = ?", userID, req.ProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check favorites: %w", err)
		}
		if count > 0 {
			return ErrAlreadyFavorite
		}

		created = Favorite{UserID: userID, ProductID: req.ProductID}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyFavorite
			}
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "product_id": req.ProductID}).Debug("Product added to favorites")
	return s.Get(ctx, userID, created.ID)
}

// Remove deletes one of the caller's favorites
func (s *Service) Remove(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// MoveToCart adds the favorite's product to the cart, then drops the favorite
func (s *Service) MoveToCart(ctx context.Context, userID, id uint, quantity int) (*cart.CartResponse, error) {
	f, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	c, err := s.carts.AddToCart(ctx, userID, &cart.AddToCartRequest{ProductID: f.ProductID, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	if err := s.Remove(ctx, userID, id); err != nil {
		s.logger.WithError(err).WithField("favorite_id", id).Warn("Failed to drop favorite after moving it to the cart")
	}
	return c, nil
}

func (s *Service) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (s *Service) load(ctx context.Context, userID, id uint) (*Favorite, error) {
	var f Favorite
	err := s.preloaded(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFavoriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite: %w", err)
	}
	return &f, nil
}
