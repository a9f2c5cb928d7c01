// internal/interfaces/http/handlers/category.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	productService *product.Service
	files          *storage.Local
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(productService *product.Service, files *storage.Local) *CategoryHandler {
	return &CategoryHandler{productService: productService, files: files}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Categories retrieved successfully", categories)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.productService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Category retrieved successfully", category)
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req product.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.productService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Category created successfully", category)
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}

	var req product.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.productService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Category updated successfully", category)
}

// UploadCategoryImage handles POST /admin/categories/:id/image
func (h *CategoryHandler) UploadCategoryImage(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}

	header, _ := c.FormFile("image")
	path, err := h.files.SaveImage(header, storage.KindCategory)
	if err != nil {
		respondError(c, err)
		return
	}

	category, previous, err := h.productService.SetCategoryImage(c.Request.Context(), id, path)
	if err != nil {
		h.files.Delete(path)
		respondError(c, err)
		return
	}
	h.files.Delete(previous)
	respondOK(c, "Category image updated successfully", category)
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.productService.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.files.Delete(category.Image)
	respondOK(c, "Category deleted successfully", nil)
}
