// internal/interfaces/http/handlers/product.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/restock"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
	restockService *restock.Service
	files          *storage.Local
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, restockService *restock.Service, files *storage.Local) *ProductHandler {
	return &ProductHandler{productService: productService, restockService: restockService, files: files}
}

// StockUpdateRequest represents an admin stock change
type StockUpdateRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// FeatureRequest represents a new product feature
type FeatureRequest struct {
	Feature string `json:"feature" binding:"required,max=500"`
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	products, meta, err := h.productService.ListProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Products retrieved successfully", products, meta)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	detail, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Product retrieved successfully", detail)
}

// GetWeeklyDeal handles GET /products/weekly-deal
func (h *ProductHandler) GetWeeklyDeal(c *gin.Context) {
	deal, err := h.productService.GetWeeklyDeal(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Weekly deal retrieved successfully", deal)
}

// CreateWeeklyDeal handles POST /admin/weekly-deals
func (h *ProductHandler) CreateWeeklyDeal(c *gin.Context) {
	var req product.WeeklyDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deal, err := h.productService.CreateWeeklyDeal(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Weekly deal created successfully", deal)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Product created successfully", p)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Product updated successfully", p)
}

// UpdateStock handles PUT /admin/products/:id/stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Stock updated successfully", p)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	images, err := h.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, img := range images {
		h.files.Delete(img)
	}
	respondOK(c, "Product deleted successfully", nil)
}

// AddImage handles POST /admin/products/:id/images
func (h *ProductHandler) AddImage(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	header, _ := c.FormFile("image")
	path, err := h.files.SaveImage(header, storage.KindProduct)
	if err != nil {
		respondError(c, err)
		return
	}

	img, err := h.productService.AddImage(c.Request.Context(), id, path)
	if err != nil {
		h.files.Delete(path)
		respondError(c, err)
		return
	}
	respondCreated(c, "Image uploaded successfully", img)
}

// DeleteImage handles DELETE /admin/products/:id/images/:imageId
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId", "image")
	if !ok {
		return
	}

	path, err := h.productService.DeleteImage(c.Request.Context(), id, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.files.Delete(path)
	respondOK(c, "Image deleted successfully", nil)
}

// AddFeature handles POST /admin/products/:id/features
func (h *ProductHandler) AddFeature(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req FeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	feature, err := h.productService.AddFeature(c.Request.Context(), id, req.Feature)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Feature added successfully", feature)
}

// DeleteFeature handles DELETE /admin/products/:id/features/:featureId
func (h *ProductHandler) DeleteFeature(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	featureID, ok := parseID(c, "featureId", "feature")
	if !ok {
		return
	}

	if err := h.productService.DeleteFeature(c.Request.Context(), id, featureID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Feature deleted successfully", nil)
}

// ExportProducts handles GET /admin/products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.productService.ExportProducts(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// NotifyWhenRestocked handles POST /products/:id/notify
func (h *ProductHandler) NotifyWhenRestocked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	n, err := h.restockService.Register(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "You will be notified when the product is back in stock", n)
}

// CancelRestockNotification handles DELETE /products/:id/notify
func (h *ProductHandler) CancelRestockNotification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.restockService.Unregister(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Restock notification removed", nil)
}
