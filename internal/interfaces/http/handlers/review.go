// internal/interfaces/http/handlers/review.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles product ratings and reviews
type ReviewHandler struct {
	productService *product.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(productService *product.Service) *ReviewHandler {
	return &ReviewHandler{productService: productService}
}

// RateProduct handles POST /products/:id/rating
func (h *ReviewHandler) RateProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req product.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rating, err := h.productService.RateProduct(c.Request.Context(), userID, productID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Rating saved successfully", rating)
}

// GetReviews handles GET /products/:id/reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	reviews, meta, err := h.productService.ListReviews(c.Request.Context(), productID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Reviews retrieved successfully", reviews, meta)
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req product.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.productService.CreateReview(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Review created successfully", review)
}

// UpdateReview handles PUT /products/:id/reviews/:reviewId
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "reviewId", "review")
	if !ok {
		return
	}

	var req product.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.productService.UpdateReview(c.Request.Context(), userID, productID, reviewID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Review updated successfully", review)
}

// DeleteReview handles DELETE /products/:id/reviews/:reviewId
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "reviewId", "review")
	if !ok {
		return
	}

	if err := h.productService.DeleteReview(c.Request.Context(), userID, productID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Review deleted successfully", nil)
}
