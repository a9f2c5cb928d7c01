// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/restock"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

// UserProfileHandler handles the authenticated user's own account
type UserProfileHandler struct {
	userService    *user.Service
	restockService *restock.Service
	files          *storage.Local
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(userService *user.Service, restockService *restock.Service, files *storage.Local) *UserProfileHandler {
	return &UserProfileHandler{userService: userService, restockService: restockService, files: files}
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// GetProfile handles GET /accounts/me
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /accounts/me
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req user.ProfileFields
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Profile updated successfully", profile)
}

// ChangePassword handles POST /accounts/me/password
func (h *UserProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Password changed successfully", nil)
}

// UploadProfilePicture handles POST /accounts/me/picture
func (h *UserProfileHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	current, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	header, _ := c.FormFile("image")
	path, err := h.files.SaveImage(header, storage.KindProfile)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.userService.SetProfilePicture(c.Request.Context(), userID, path)
	if err != nil {
		h.files.Delete(path)
		respondError(c, err)
		return
	}
	h.files.Delete(current.ProfilePicture)
	respondOK(c, "Profile picture updated successfully", profile)
}

// ResendVerification handles POST /accounts/verify-email/resend
func (h *UserProfileHandler) ResendVerification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.ResendVerification(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Verification email sent", nil)
}

// ListRestockNotifications handles GET /accounts/me/notifications
func (h *UserProfileHandler) ListRestockNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := h.restockService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Restock notifications retrieved successfully", notifications)
}
