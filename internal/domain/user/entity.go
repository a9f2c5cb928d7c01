// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is a shop account. Newsletter-only rows have no password.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password         string     `gorm:"size:255" json:"-"`
	FirstName        string     `gorm:"size:100" json:"first_name"`
	LastName         string     `gorm:"size:100" json:"last_name"`
	MobilePhone      string     `gorm:"size:20" json:"mobile_phone"`
	ProfilePicture   string     `gorm:"size:500" json:"profile_picture"`
	BirthDate        *time.Time `json:"birth_date"`
	Country          string     `gorm:"size:100" json:"country"`
	FacebookProfile  string     `gorm:"size:255" json:"facebook_profile"`
	InstagramProfile string     `gorm:"size:255" json:"instagram_profile"`
	TwitterProfile   string     `gorm:"size:255" json:"twitter_profile"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	IsAdmin          bool       `gorm:"default:false" json:"is_admin"`
	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	EmailVerifiedAt  *time.Time `json:"email_verified_at"`
	IsSubscribed     bool       `gorm:"default:false;index" json:"is_subscribed"`
	LastLoginAt      *time.Time `json:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeSave keeps emails normalized
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// HasPassword reports whether the account can log in
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// GetDisplayName returns display name (full name or email)
func (u *User) GetDisplayName() string {
	if fullName := u.GetFullName(); fullName != "" {
		return fullName
	}
	return u.Email
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
