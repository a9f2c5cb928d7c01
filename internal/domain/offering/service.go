// internal/domain/offering/service.go
package offering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound = apperr.New(apperr.ErrNotFound, "service not found")
	ErrEmptyTitle      = apperr.New(apperr.ErrInvalid, "title cannot be empty")
)

// Catalog manages the services offered by the store
type Catalog struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewCatalog creates a new service catalog
func NewCatalog(db *gorm.DB, logger *logrus.Logger) *Catalog {
	return &Catalog{db: db, logger: logger}
}

// ServiceRequest represents service creation data
type ServiceRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

// ServiceUpdateRequest represents service update data
type ServiceUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// List returns every service ordered by title
func (c *Catalog) List(ctx context.Context) ([]ServiceSummary, error) {
	var services []Service
	if err := c.db.WithContext(ctx).Order("title ASC, id ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	out := make([]ServiceSummary, 0, len(services))
	for i := range services {
		out = append(out, services[i].Summary())
	}
	return out, nil
}

// Get returns a service with its description
func (c *Catalog) Get(ctx context.Context, id uint) (*Service, error) {
	var svc Service
	err := c.db.WithContext(ctx).First(&svc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

// Create adds a service on behalf of an admin
func (c *Catalog) Create(ctx context.Context, userID uint, req *ServiceRequest) (*Service, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	svc := Service{Title: title, Description: req.Description, UserID: userID}
	if err := c.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	c.logger.WithFields(logrus.Fields{"service_id": svc.ID, "user_id": userID}).Info("Service created")
	return &svc, nil
}

// Update changes the provided fields of a service
func (c *Catalog) Update(ctx context.Context, id uint, req *ServiceUpdateRequest) (*Service, error) {
	svc, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := c.db.WithContext(ctx).Model(svc).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update service: %w", err)
		}
	}
	return c.Get(ctx, id)
}

// SetLogo stores a new logo path and returns the previous one
func (c *Catalog) SetLogo(ctx context.Context, id uint, path string) (*Service, string, error) {
	svc, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	previous := svc.Logo
	if err := c.db.WithContext(ctx).Model(svc).Update("logo", path).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update service logo: %w", err)
	}
	svc.Logo = path
	return svc, previous, nil
}

// Delete removes a service and returns its logo path
func (c *Catalog) Delete(ctx context.Context, id uint) (string, error) {
	svc, err := c.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := c.db.WithContext(ctx).Delete(&Service{}, id).Error; err != nil {
		return "", fmt.Errorf("failed to delete service: %w", err)
	}

	c.logger.WithField("service_id", id).Info("Service deleted")
	return svc.Logo, nil
}
