// internal/domain/restock/service.go
package restock

import (
	"context"
	"errors"
	"fmt"

	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInStock           = apperr.New(apperr.ErrInvalid, "product is in stock")
	ErrAlreadyRegistered = apperr.New(apperr.ErrInvalid, "already registered")
	ErrNotRegistered     = apperr.New(apperr.ErrNotFound, "no restock notification for this product")
)

// Service keeps restock registrations and delivers the alerts
type Service struct {
	db     *gorm.DB
	mailer *email.Mailer
	logger *logrus.Logger
}

var _ product.RestockNotifier = (*Service)(nil)

// NewService creates a new restock service
func NewService(db *gorm.DB, mailer *email.Mailer, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		mailer: mailer,
		logger: logger,
	}
}

// Register asks to be told when a sold-out product is back
func (s *Service) Register(ctx context.Context, userID, productID uint) (*Notification, error) {
	var n Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.Select("id", "stock").First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if p.Stock > 0 {
			return ErrInStock
		}

		var count int64
		if err := tx.Model(&Notification{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check registration: %w", err)
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}

		n = Notification{UserID: userID, ProductID: productID}
		if err := tx.Create(&n).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("failed to register restock notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Unregister drops the caller's registration for a product
func (s *Service) Unregister(ctx context.Context, userID, productID uint) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to unregister restock notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotRegistered
	}
	return nil
}

// ListMine returns the caller's registrations with their products
func (s *Service) ListMine(ctx context.Context, userID uint) ([]Notification, error) {
	var list []Notification
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list restock notifications: %w", err)
	}
	return list, nil
}

// NotifyRestock claims every registration for the product and emails each
// waiting user once. Failed sends are logged, not retried.
func (s *Service) NotifyRestock(ctx context.Context, p *product.Product) error {
	var recipients []user.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claimed []Notification
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", p.ID).
			Order("id ASC").
			Find(&claimed).Error; err != nil {
			return fmt.Errorf("failed to load restock notifications: %w", err)
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(claimed))
		userIDs := make([]uint, 0, len(claimed))
		for _, n := range claimed {
			ids = append(ids, n.ID)
			userIDs = append(userIDs, n.UserID)
		}
		if err := tx.Where("id IN ?", ids).Delete(&Notification{}).Error; err != nil {
			return fmt.Errorf("failed to clear restock notifications: %w", err)
		}
		if err := tx.Where("id IN ? AND is_active = ?", userIDs, true).Order("id ASC").Find(&recipients).Error; err != nil {
			return fmt.Errorf("failed to load restock recipients: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var failed int
	for _, u := range recipients {
		if err := s.mailer.SendRestockAlert(ctx, u.Email, u.GetDisplayName(), p.Name, p.ID); err != nil {
			failed++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"product_id": p.ID,
				"user_id":    u.ID,
			}).Error("Failed to send restock alert")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": p.ID,
		"notified":   len(recipients) - failed,
		"failed":     failed,
	}).Info("Restock notifications processed")
	return nil
}
