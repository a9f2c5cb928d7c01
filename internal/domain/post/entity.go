// internal/domain/post/entity.go
package post

import (
	"time"

	"github.com/eltech/store-backend/internal/domain/product"
)

// Post is a blog article filed under a catalog category
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Image      string    `gorm:"size:500" json:"image"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author   *Author           `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Category *product.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;" json:"category,omitempty"`
}

// Comment is a remark on a post, optionally replying to another comment
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author  *Author   `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Post    *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;" json:"replies"`
}

// Author is the public slice of a user shown on posts and comments
type Author struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

// TableName overrides
func (Post) TableName() string    { return "posts" }
func (Comment) TableName() string { return "comments" }
func (Author) TableName() string  { return "users" }

// Actor is the authenticated caller of a write operation
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// CanModify reports whether the actor may change content owned by ownerID
func (a Actor) CanModify(ownerID uint) bool {
	return a.IsAdmin || a.UserID == ownerID
}
