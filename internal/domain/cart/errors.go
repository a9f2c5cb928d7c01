package cart

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrItemNotFound      = apperr.New(apperr.ErrNotFound, "item not found in cart")
	ErrInsufficientStock = apperr.New(apperr.ErrInvalid, "product stock is not enough")
	ErrInvalidQuantity   = apperr.New(apperr.ErrInvalid, "quantity must be at least 1")
)
