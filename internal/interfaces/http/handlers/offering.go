// internal/interfaces/http/handlers/offering.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/offering"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

// ServiceHandler handles the store's service offerings
type ServiceHandler struct {
	catalog *offering.Catalog
	files   *storage.Local
}

// NewServiceHandler creates a new service offering handler
func NewServiceHandler(catalog *offering.Catalog, files *storage.Local) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, files: files}
}

// GetServices handles GET /services
func (h *ServiceHandler) GetServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Services retrieved successfully", services)
}

// GetService handles GET /services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	svc, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Service retrieved successfully", svc)
}

// CreateService handles POST /admin/services
func (h *ServiceHandler) CreateService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req offering.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Service created successfully", svc)
}

// UpdateService handles PUT /admin/services/:id
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	var req offering.ServiceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	svc, err := h.catalog.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Service updated successfully", svc)
}

// UploadLogo handles POST /admin/services/:id/logo
func (h *ServiceHandler) UploadLogo(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	header, _ := c.FormFile("image")
	path, err := h.files.SaveImage(header, storage.KindService)
	if err != nil {
		respondError(c, err)
		return
	}

	svc, previous, err := h.catalog.SetLogo(c.Request.Context(), id, path)
	if err != nil {
		h.files.Delete(path)
		respondError(c, err)
		return
	}
	h.files.Delete(previous)
	respondOK(c, "Service logo updated successfully", svc)
}

// DeleteService handles DELETE /admin/services/:id
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}

	logo, err := h.catalog.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.files.Delete(logo)
	respondOK(c, "Service deleted successfully", nil)
}
