// internal/domain/offering/entity.go
package offering

import "time"

// Service is a service the store offers next to its products (repairs, installation...)
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Logo        string    `gorm:"size:500" json:"logo"`
	Description string    `gorm:"type:text" json:"description"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Service) TableName() string {
	return "services"
}

// ServiceSummary is the list view of a service
type ServiceSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Logo  string `json:"logo"`
}

// Summary projects a service into its list view
func (s *Service) Summary() ServiceSummary {
	return ServiceSummary{ID: s.ID, Title: s.Title, Logo: s.Logo}
}
