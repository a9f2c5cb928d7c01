package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRequest represents a rating submission
type RateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// ReviewRequest represents review create/update data
type ReviewRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// RateProduct records the user's rating, replacing any earlier one
func (s *Service) RateProduct(ctx context.Context, userID, productID uint, value int) (*Rating, error) {
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	rating := Rating{UserID: userID, ProductID: productID, Rating: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	if err := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&rating).Error; err != nil {
		return nil, fmt.Errorf("failed to reload rating: %w", err)
	}
	return &rating, nil
}

// ListReviews returns the reviews of a product, newest first
func (s *Service) ListReviews(ctx context.Context, productID uint, params pagination.Params) ([]Review, pagination.Meta, error) {
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, pagination.Meta{}, err
	}

	query := s.db.WithContext(ctx).Model(&Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	page := params.Normalize()
	var reviews []Review
	err := query.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, pagination.NewMeta(page, total), nil
}

// CreateReview adds a review by userID
func (s *Service) CreateReview(ctx context.Context, userID, productID uint, req *ReviewRequest) (*Review, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Invalidf("content cannot be empty")
	}
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	review := Review{UserID: userID, ProductID: productID, Content: content}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.loadReview(ctx, productID, review.ID)
}

// UpdateReview changes the content of the caller's own review
func (s *Service) UpdateReview(ctx context.Context, userID, productID, reviewID uint, req *ReviewRequest) (*Review, error) {
	review, err := s.ownedReview(ctx, userID, productID, reviewID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Invalidf("content cannot be empty")
	}
	if err := s.db.WithContext(ctx).Model(&Review{}).Where("id = ?", review.ID).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return s.loadReview(ctx, productID, reviewID)
}

// DeleteReview removes the caller's own review
func (s *Service) DeleteReview(ctx context.Context, userID, productID, reviewID uint) error {
	review, err := s.ownedReview(ctx, userID, productID, reviewID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *Service) ownedReview(ctx context.Context, userID, productID, reviewID uint) (*Review, error) {
	review, err := s.loadReview(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}
	return review, nil
}

func (s *Service) loadReview(ctx context.Context, productID, reviewID uint) (*Review, error) {
	var review Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}
