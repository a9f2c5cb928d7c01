package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CategoryRequest represents category create/update data
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ListCategories returns every category by name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory loads one category
func (s *Service) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &category, nil
}

// CreateCategory stores a new category
func (s *Service) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	category := Category{Name: strings.TrimSpace(req.Name)}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// UpdateCategory renames a category
func (s *Service) UpdateCategory(ctx context.Context, id uint, req *CategoryRequest) (*Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(category).Update("name", strings.TrimSpace(req.Name)).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// SetCategoryImage stores the category image path and returns the previous one
func (s *Service) SetCategoryImage(ctx context.Context, id uint, path string) (*Category, string, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, "", err
	}
	previous := category.Image
	if err := s.db.WithContext(ctx).Model(category).Update("image", path).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update category image: %w", err)
	}
	return category, previous, nil
}

// DeleteCategory removes a category that has no products
func (s *Service) DeleteCategory(ctx context.Context, id uint) (*Category, error) {
	var deleted Category

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to load category: %w", err)
		}

		var products int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return fmt.Errorf("failed to count category products: %w", err)
		}
		if products > 0 {
			return ErrCategoryInUse
		}

		if err := tx.Delete(&Category{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
