package order

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrOrderNotFound        = apperr.New(apperr.ErrNotFound, "order not found")
	ErrInvalidTransition    = apperr.New(apperr.ErrInvalid, "invalid status transition")
	ErrInvalidStatus        = apperr.New(apperr.ErrInvalid, "unknown order status")
	ErrCannotCancel         = apperr.New(apperr.ErrInvalid, "only pending orders can be cancelled")
	ErrInvalidPaymentMethod = apperr.New(apperr.ErrInvalid, "payment method must be cash_on_delivery or card")
)
