// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Service handles coupon administration and redemption
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CouponCreateRequest represents coupon creation data
type CouponCreateRequest struct {
	Code      string          `json:"code" binding:"required,max=50"`
	Discount  decimal.Decimal `json:"discount"`
	UsesLimit int             `json:"uses_limit"`
	IsActive  *bool           `json:"is_active"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

// CouponUpdateRequest represents coupon update data
type CouponUpdateRequest struct {
	Code         *string          `json:"code" binding:"omitempty,max=50"`
	Discount     *decimal.Decimal `json:"discount"`
	UsesLimit    *int             `json:"uses_limit"`
	IsActive     *bool            `json:"is_active"`
	ExpiresAt    *time.Time       `json:"expires_at"`
	ClearExpires bool             `json:"clear_expires"`
}

// List returns one page of coupons, newest first
func (s *Service) List(ctx context.Context, params pagination.Params) ([]Coupon, pagination.Meta, error) {
	query := s.db.WithContext(ctx).Model(&Coupon{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count coupons: %w", err)
	}

	page := params.Normalize()
	var coupons []Coupon
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&coupons).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, pagination.NewMeta(page, total), nil
}

// Get loads a coupon by id
func (s *Service) Get(ctx context.Context, id uint) (*Coupon, error) {
	var c Coupon
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	return &c, nil
}

// Create validates and stores a coupon
func (s *Service) Create(ctx context.Context, req *CouponCreateRequest) (*Coupon, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if err := validate(req.Discount, req.UsesLimit); err != nil {
		return nil, err
	}

	c := Coupon{
		Code:      code,
		Discount:  req.Discount.Round(2),
		UsesLimit: req.UsesLimit,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	disabled := req.IsActive != nil && !*req.IsActive

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := codeAvailable(tx, code, 0); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCodeTaken
			}
			return fmt.Errorf("failed to create coupon: %w", err)
		}
		// gorm omits a false is_active and reads the column default back
		if disabled {
			if err := tx.Model(&Coupon{}).Where("id = ?", c.ID).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("failed to disable coupon: %w", err)
			}
			c.IsActive = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"coupon_id": c.ID, "code": c.Code}).Info("Coupon created")
	return &c, nil
}

// Update applies the provided fields to a coupon
func (s *Service) Update(ctx context.Context, id uint, req *CouponUpdateRequest) (*Coupon, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Coupon
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCouponNotFound
			}
			return fmt.Errorf("failed to load coupon: %w", err)
		}

		updates := map[string]interface{}{}
		if req.Code != nil {
			code := NormalizeCode(*req.Code)
			if code == "" {
				return ErrEmptyCode
			}
			if err := codeAvailable(tx, code, id); err != nil {
				return err
			}
			updates["code"] = code
		}
		discount, uses := c.Discount, c.UsesLimit
		if req.Discount != nil {
			discount = req.Discount.Round(2)
			updates["discount"] = discount
		}
		if req.UsesLimit != nil {
			uses = *req.UsesLimit
			updates["uses_limit"] = uses
		}
		if err := validate(discount, uses); err != nil {
			return err
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if req.ClearExpires {
			updates["expires_at"] = nil
		} else if req.ExpiresAt != nil {
			updates["expires_at"] = *req.ExpiresAt
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&Coupon{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCodeTaken
			}
			return fmt.Errorf("failed to update coupon: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a coupon
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// FindUsable returns the active, unexpired coupon with uses left that matches code
func (s *Service) FindUsable(ctx context.Context, code string) (*Coupon, error) {
	return FindUsableTx(s.db.WithContext(ctx), code, s.now())
}

// FindUsableTx is FindUsable against an explicit handle
func FindUsableTx(tx *gorm.DB, code string, now time.Time) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCouponNotUsable
	}

	var c Coupon
	err := tx.Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotUsable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	if !c.IsUsable(now) {
		return nil, ErrCouponNotUsable
	}
	return &c, nil
}

// Redeem consumes one use of the coupon. It must run inside the caller's transaction.
func Redeem(tx *gorm.DB, couponID uint) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND uses_limit > 0", couponID).
		UpdateColumn("uses_limit", gorm.Expr("uses_limit - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotUsable
	}
	return nil
}

// Release gives one use back to the redeemed coupon. A coupon deleted
// since the redemption is ignored.
func Release(tx *gorm.DB, couponID *uint) error {
	if couponID == nil {
		return nil
	}
	err := tx.Model(&Coupon{}).
		Where("id = ?", *couponID).
		UpdateColumn("uses_limit", gorm.Expr("uses_limit + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to release coupon: %w", err)
	}
	return nil
}

// ApplyDiscount returns the total after a percentage discount, rounded to cents
func ApplyDiscount(subtotal, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return subtotal.Round(2)
	}
	factor := hundred.Sub(percent).Div(hundred)
	return subtotal.Mul(factor).Round(2)
}

func validate(discount decimal.Decimal, usesLimit int) error {
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if usesLimit < 0 {
		return ErrInvalidUsesLimit
	}
	return nil
}

func codeAvailable(tx *gorm.DB, code string, exceptID uint) error {
	var count int64
	if err := tx.Model(&Coupon{}).Where("code = ? AND id <> ?", code, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check coupon code: %w", err)
	}
	if count > 0 {
		return ErrCodeTaken
	}
	return nil
}
