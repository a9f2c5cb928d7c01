// internal/interfaces/http/handlers/favorite.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/favorite"
	"github.com/gin-gonic/gin"
)

// FavoriteHandler handles favorite product endpoints
type FavoriteHandler struct {
	favoriteService *favorite.Service
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *favorite.Service) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// GetFavorites handles GET /favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Favorites retrieved successfully", favorites)
}

// GetFavorite handles GET /favorites/:id
func (h *FavoriteHandler) GetFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "favorite")
	if !ok {
		return
	}

	fav, err := h.favoriteService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Favorite retrieved successfully", fav)
}

// AddFavorite handles POST /favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req favorite.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fav, err := h.favoriteService.Add(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Product added to favorites", fav)
}

// RemoveFavorite handles DELETE /favorites/:id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "favorite")
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Product removed from favorites", nil)
}

// MoveToCart handles POST /favorites/:id/move-to-cart
func (h *FavoriteHandler) MoveToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "favorite")
	if !ok {
		return
	}

	var req favorite.MoveToCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	cartResponse, err := h.favoriteService.MoveToCart(c.Request.Context(), userID, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Product moved to cart", cartResponse)
}
