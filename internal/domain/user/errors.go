package user

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrUserNotFound         = apperr.New(apperr.ErrNotFound, "user not found")
	ErrEmailTaken           = apperr.New(apperr.ErrInvalid, "user with this email already exists")
	ErrInvalidCredentials   = apperr.New(apperr.ErrUnauthorized, "invalid email or password")
	ErrInvalidRefreshToken  = apperr.New(apperr.ErrUnauthorized, "invalid refresh token")
	ErrPasswordMismatch     = apperr.New(apperr.ErrInvalid, "passwords do not match")
	ErrWrongCurrentPassword = apperr.New(apperr.ErrInvalid, "current password is incorrect")
	ErrInvalidToken         = apperr.New(apperr.ErrInvalid, "invalid or expired token")
	ErrAlreadyVerified      = apperr.New(apperr.ErrInvalid, "email is already verified")
	ErrAlreadySubscribed    = apperr.New(apperr.ErrInvalid, "already subscribed")
	ErrNotSubscribed        = apperr.New(apperr.ErrInvalid, "not subscribed")
	ErrCannotDeactivateSelf = apperr.New(apperr.ErrInvalid, "you cannot deactivate your own account")
)
