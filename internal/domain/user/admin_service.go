// internal/domain/user/admin_service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, logger *logrus.Logger) *AdminService {
	return &AdminService{db: db, logger: logger}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	pagination.Params
	Search       string `form:"search"`
	IsActive     *bool  `form:"is_active"`
	IsAdmin      *bool  `form:"is_admin"`
	IsSubscribed *bool  `form:"is_subscribed"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListUsers returns one page of users matching the filters
func (s *AdminService) ListUsers(ctx context.Context, req *UserListRequest) ([]User, pagination.Meta, error) {
	query := s.db.WithContext(ctx).Model(&User{})

	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	if req.IsAdmin != nil {
		query = query.Where("is_admin = ?", *req.IsAdmin)
	}
	if req.IsSubscribed != nil {
		query = query.Where("is_subscribed = ?", *req.IsSubscribed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count users: %w", err)
	}

	page := req.Params.Normalize()
	var users []User
	err := query.Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list users: %w", err)
	}

	return users, pagination.NewMeta(page, total), nil
}

// UpdateUserStatus activates or deactivates an account
func (s *AdminService) UpdateUserStatus(ctx context.Context, adminID, userID uint, active bool) (*User, error) {
	if adminID == userID && !active {
		return nil, ErrCannotDeactivateSelf
	}

	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"admin_id":  adminID,
		"is_active": active,
	}).Info("User status changed")

	return &user, nil
}
