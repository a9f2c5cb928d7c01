package product

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrProductNotFound  = apperr.New(apperr.ErrNotFound, "product not found")
	ErrCategoryNotFound = apperr.New(apperr.ErrNotFound, "category not found")
	ErrImageNotFound    = apperr.New(apperr.ErrNotFound, "image not found")
	ErrFeatureNotFound  = apperr.New(apperr.ErrNotFound, "feature not found")
	ErrReviewNotFound   = apperr.New(apperr.ErrNotFound, "review not found")
	ErrNoWeeklyDeal     = apperr.New(apperr.ErrNotFound, "no weekly deal available")
	ErrNegativePrice    = apperr.New(apperr.ErrInvalid, "price cannot be negative")
	ErrNegativeStock    = apperr.New(apperr.ErrInvalid, "stock cannot be negative")
	ErrInvalidSale      = apperr.New(apperr.ErrInvalid, "sale amount must be between 0 and the price")
	ErrInvalidRating    = apperr.New(apperr.ErrInvalid, "rating must be between 1 and 5")
	ErrCategoryInUse    = apperr.New(apperr.ErrInvalid, "category still has products")
	ErrNotReviewOwner   = apperr.New(apperr.ErrForbidden, "you can only change your own reviews")
)
