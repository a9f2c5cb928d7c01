// internal/domain/post/service.go
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles posts and their comments
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new post service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// PostListRequest represents post list query parameters
type PostListRequest struct {
	pagination.Params
	Search     string `form:"search"`
	CategoryID uint   `form:"category_id"`
	UserID     uint   `form:"user_id"`
}

// PostCreateRequest represents post creation data
type PostCreateRequest struct {
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"required"`
	CategoryID uint   `json:"category_id" binding:"required"`
}

// PostUpdateRequest represents post update data
type PostUpdateRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=255"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
}

// ListPosts returns one page of posts, newest first
func (s *Service) ListPosts(ctx context.Context, req *PostListRequest) ([]Post, pagination.Meta, error) {
	query := s.db.WithContext(ctx).Model(&Post{})

	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count posts: %w", err)
	}

	page := req.Params.Normalize()
	var posts []Post
	err := query.Preload("Author").Preload("Category").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, pagination.NewMeta(page, total), nil
}

// GetPost loads one post with its author and category
func (s *Service) GetPost(ctx context.Context, id uint) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &p, nil
}

// CreatePost stores a post written by userID
func (s *Service) CreatePost(ctx context.Context, userID uint, req *PostCreateRequest) (*Post, error) {
	p := Post{
		Title:      strings.TrimSpace(req.Title),
		Content:    strings.TrimSpace(req.Content),
		UserID:     userID,
		CategoryID: req.CategoryID,
	}
	if p.Content == "" {
		return nil, ErrEmptyContent
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, req.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, p.ID)
}

// UpdatePost changes a post owned by the actor
func (s *Service) UpdatePost(ctx context.Context, actor Actor, id uint, req *PostUpdateRequest) (*Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedPost(tx, actor, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			content := strings.TrimSpace(*req.Content)
			if content == "" {
				return ErrEmptyContent
			}
			updates["content"] = content
		}
		if req.CategoryID != nil {
			if err := categoryExists(tx, *req.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *req.CategoryID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&Post{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

// SetPostImage stores the image path of a post and returns the previous one
func (s *Service) SetPostImage(ctx context.Context, actor Actor, id uint, path string) (*Post, string, error) {
	p, err := ownedPost(s.db.WithContext(ctx), actor, id)
	if err != nil {
		return nil, "", err
	}
	previous := p.Image
	if err := s.db.WithContext(ctx).Model(&Post{}).Where("id = ?", id).Update("image", path).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update post image: %w", err)
	}
	updated, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return updated, previous, nil
}

// DeletePost removes a post with its comments and returns its image path
func (s *Service) DeletePost(ctx context.Context, actor Actor, id uint) (string, error) {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedPost(tx, actor, id)
		if err != nil {
			return err
		}
		image = p.Image

		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}
		if err := tx.Delete(&Post{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{"post_id": id, "user_id": actor.UserID}).Info("Post deleted")
	return image, nil
}

func ownedPost(tx *gorm.DB, actor Actor, id uint) (*Post, error) {
	var p Post
	if err := tx.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if !actor.CanModify(p.UserID) {
		return nil, ErrNotPostOwner
	}
	return &p, nil
}

func categoryExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&product.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}
