// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
	userService  *user.Service
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(adminService *user.AdminService, userService *user.Service) *UserAdminHandler {
	return &UserAdminHandler{adminService: adminService, userService: userService}
}

// GetUsers handles GET /admin/users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	users, meta, err := h.adminService.ListUsers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Users retrieved successfully", users, meta)
}

// GetUser handles GET /admin/users/:id
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "User retrieved successfully", u)
}

// UpdateUserStatus handles PUT /admin/users/:id/status
func (h *UserAdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	var req user.UserStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	u, err := h.adminService.UpdateUserStatus(c.Request.Context(), adminID, id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "User status updated successfully", u)
}
