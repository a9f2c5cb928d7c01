package post

import "github.com/eltech/store-backend/internal/pkg/apperr"

var (
	ErrPostNotFound    = apperr.New(apperr.ErrNotFound, "post not found")
	ErrCommentNotFound = apperr.New(apperr.ErrNotFound, "comment not found")
	ErrNotPostOwner    = apperr.New(apperr.ErrForbidden, "you can only change your own posts")
	ErrNotCommentOwner = apperr.New(apperr.ErrForbidden, "you can only change your own comments")
	ErrParentMismatch  = apperr.New(apperr.ErrInvalid, "parent comment belongs to another post")
	ErrEmptyContent    = apperr.New(apperr.ErrInvalid, "content cannot be empty")
)
