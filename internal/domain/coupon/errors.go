package coupon

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrCouponNotFound   = apperr.New(apperr.ErrNotFound, "coupon not found")
	ErrCouponNotUsable  = apperr.New(apperr.ErrInvalid, "coupon is invalid, expired or used up")
	ErrInvalidDiscount  = apperr.New(apperr.ErrInvalid, "discount must be a percentage between 0 and 100")
	ErrInvalidUsesLimit = apperr.New(apperr.ErrInvalid, "uses limit cannot be negative")
	ErrCodeTaken        = apperr.New(apperr.ErrInvalid, "coupon code already exists")
	ErrEmptyCode        = apperr.New(apperr.ErrInvalid, "coupon code cannot be empty")
)
