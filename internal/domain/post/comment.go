package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CommentRequest represents comment creation data
type CommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// CommentUpdateRequest represents comment update data
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListComments returns the post's top-level comments with their reply trees
func (s *Service) ListComments(ctx context.Context, postID uint) ([]Comment, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	var all []Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return buildTree(all), nil
}

// GetComment loads one comment of a post with its direct replies
func (s *Service) GetComment(ctx context.Context, postID, commentID uint) (*Comment, error) {
	var c Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Replies.Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &c, nil
}

// CreateComment adds a comment by userID. A parent must belong to the same post.
func (s *Service) CreateComment(ctx context.Context, userID, postID uint, req *CommentRequest) (*Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c := Comment{Content: content, PostID: postID, UserID: userID, ParentID: req.ParentID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check post: %w", err)
		}
		if count == 0 {
			return ErrPostNotFound
		}

		if req.ParentID != nil {
			var parent Comment
			if err := tx.Select("id", "post_id").First(&parent, *req.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCommentNotFound
				}
				return fmt.Errorf("failed to load parent comment: %w", err)
			}
			if parent.PostID != postID {
				return ErrParentMismatch
			}
		}

		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetComment(ctx, postID, c.ID)
}

// UpdateComment edits the caller's own comment
func (s *Service) UpdateComment(ctx context.Context, userID, postID, commentID uint, req *CommentUpdateRequest) (*Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c, err := s.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotCommentOwner
	}

	if err := s.db.WithContext(ctx).Model(&Comment{}).Where("id = ?", c.ID).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return s.GetComment(ctx, postID, commentID)
}

// DeleteComment removes the caller's own comment and every reply below it
func (s *Service) DeleteComment(ctx context.Context, userID, postID, commentID uint) error {
	c, err := s.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrNotCommentOwner
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{c.ID}
		frontier := []uint{c.ID}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return fmt.Errorf("failed to collect replies: %w", err)
			}
			ids = append(ids, children...)
			frontier = children
		}
		if err := tx.Where("id IN ?", ids).Delete(&Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}

func (s *Service) postExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

// buildTree nests comments under their parents, keeping input order
func buildTree(all []Comment) []Comment {
	children := make(map[uint][]int, len(all))
	var roots []int
	for i, c := range all {
		if c.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], i)
	}

	var build func(i int) Comment
	build = func(i int) Comment {
		c := all[i]
		c.Replies = make([]Comment, 0, len(children[c.ID]))
		for _, j := range children[c.ID] {
			c.Replies = append(c.Replies, build(j))
		}
		return c
	}

	tree := make([]Comment, 0, len(roots))
	for _, i := range roots {
		tree = append(tree, build(i))
	}
	return tree
}
