// internal/interfaces/http/handlers/comment.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/post"
	"github.com/gin-gonic/gin"
)

// GetComments handles GET /posts/:id/comments
func (h *PostHandler) GetComments(c *gin.Context) {
	postID, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	comments, err := h.postService.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Comments retrieved successfully", comments)
}

// GetComment handles GET /posts/:id/comments/:commentId
func (h *PostHandler) GetComment(c *gin.Context) {
	postID, ok := parseID(c, "id", "post")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId", "comment")
	if !ok {
		return
	}

	comment, err := h.postService.GetComment(c.Request.Context(), postID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Comment retrieved successfully", comment)
}

// CreateComment handles POST /posts/:id/comments
func (h *PostHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id", "post")
	if !ok {
		return
	}

	var req post.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.postService.CreateComment(c.Request.Context(), userID, postID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Comment created successfully", comment)
}

// UpdateComment handles PUT /posts/:id/comments/:commentId
func (h *PostHandler) UpdateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id", "post")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId", "comment")
	if !ok {
		return
	}

	var req post.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.postService.UpdateComment(c.Request.Context(), userID, postID, commentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Comment updated successfully", comment)
}

// DeleteComment handles DELETE /posts/:id/comments/:commentId
func (h *PostHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id", "post")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId", "comment")
	if !ok {
		return
	}

	if err := h.postService.DeleteComment(c.Request.Context(), userID, postID, commentID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Comment deleted successfully", nil)
}
