package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t, &Coupon{})
	return NewService(db, logging.Discard()), db
}

func TestCreateCoupon(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, &CouponCreateRequest{Code: " spring10 ", Discount: decimal.NewFromInt(10), UsesLimit: 5})
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", c.Code)
	assert.True(t, c.IsActive)

	_, err = s.Create(ctx, &CouponCreateRequest{Code: "Spring10", Discount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrCodeTaken)

	_, err = s.Create(ctx, &CouponCreateRequest{Code: "BIG", Discount: decimal.NewFromInt(101)})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))

	_, err = s.Create(ctx, &CouponCreateRequest{Code: "NEG", Discount: decimal.NewFromInt(5), UsesLimit: -1})
	assert.ErrorIs(t, err, ErrInvalidUsesLimit)

	inactive := false
	off, err := s.Create(ctx, &CouponCreateRequest{Code: "OFF", Discount: decimal.NewFromInt(5), UsesLimit: 1, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	stored, err := s.Get(ctx, off.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	list, meta, err := s.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 2, meta.Total)
}

func TestUpdateAndDeleteCoupon(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, &CouponCreateRequest{Code: "A", Discount: decimal.NewFromInt(10), UsesLimit: 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, &CouponCreateRequest{Code: "B", Discount: decimal.NewFromInt(10), UsesLimit: 1})
	require.NoError(t, err)

	taken := "b"
	_, err = s.Update(ctx, c.ID, &CouponUpdateRequest{Code: &taken})
	assert.ErrorIs(t, err, ErrCodeTaken)

	d := decimal.NewFromInt(25)
	uses := 9
	updated, err := s.Update(ctx, c.ID, &CouponUpdateRequest{Discount: &d, UsesLimit: &uses})
	require.NoError(t, err)
	assert.True(t, updated.Discount.Equal(d))
	assert.Equal(t, 9, updated.UsesLimit)

	bad := decimal.NewFromInt(-1)
	_, err = s.Update(ctx, c.ID, &CouponUpdateRequest{Discount: &bad})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = s.Update(ctx, 999, &CouponUpdateRequest{})
	assert.ErrorIs(t, err, ErrCouponNotFound)

	require.NoError(t, s.Delete(ctx, c.ID))
	assert.ErrorIs(t, s.Delete(ctx, c.ID), ErrCouponNotFound)
}

func TestFindUsable(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	inactive := false

	_, err := s.Create(ctx, &CouponCreateRequest{Code: "LIVE", Discount: decimal.NewFromInt(10), UsesLimit: 1, ExpiresAt: &future})
	require.NoError(t, err)
	_, err = s.Create(ctx, &CouponCreateRequest{Code: "EXPIRED", Discount: decimal.NewFromInt(10), UsesLimit: 1, ExpiresAt: &past})
	require.NoError(t, err)
	_, err = s.Create(ctx, &CouponCreateRequest{Code: "USEDUP", Discount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = s.Create(ctx, &CouponCreateRequest{Code: "DISABLED", Discount: decimal.NewFromInt(10), UsesLimit: 3, IsActive: &inactive})
	require.NoError(t, err)

	c, err := s.FindUsable(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "LIVE", c.Code)

	for _, code := range []string{"EXPIRED", "USEDUP", "DISABLED", "MISSING", ""} {
		_, err := s.FindUsable(ctx, code)
		assert.ErrorIs(t, err, ErrCouponNotUsable, code)
	}
}

func TestRedeemAndRelease(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	c, err := s.Create(ctx, &CouponCreateRequest{Code: "ONCE", Discount: decimal.NewFromInt(50), UsesLimit: 1})
	require.NoError(t, err)

	require.NoError(t, Redeem(db, c.ID))
	assert.ErrorIs(t, Redeem(db, c.ID), ErrCouponNotUsable)

	_, err = s.FindUsable(ctx, "ONCE")
	assert.ErrorIs(t, err, ErrCouponNotUsable)

	require.NoError(t, Release(db, &c.ID))
	again, err := s.FindUsable(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, 1, again.UsesLimit)

	require.NoError(t, Release(db, nil))
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		subtotal, percent, want string
	}{
		{"100", "0", "100"},
		{"100", "10", "90"},
		{"99.99", "15", "84.99"},
		{"10.01", "33.33", "6.67"},
		{"50", "100", "0"},
	}
	for _, tt := range tests {
		got := ApplyDiscount(decimal.RequireFromString(tt.subtotal), decimal.RequireFromString(tt.percent))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s at %s%% = %s, got %s", tt.subtotal, tt.percent, tt.want, got)
	}
}

func TestCodeClaimedBetweenCheckAndWriteIsTaken(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	dbtest.BeforeNextInsert(t, db, "coupons", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&Coupon{Code: "RACE", Discount: decimal.NewFromInt(5), IsActive: true}).Error)
	})
	_, err := s.Create(ctx, &CouponCreateRequest{Code: "race", Discount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrCodeTaken)
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))

	c, err := s.Create(ctx, &CouponCreateRequest{Code: "SPRING", Discount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	dbtest.BeforeNextUpdate(t, db, "coupons", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&Coupon{Code: "SUMMER", Discount: decimal.NewFromInt(5), IsActive: true}).Error)
	})
	renamed := "summer"
	_, err = s.Update(ctx, c.ID, &CouponUpdateRequest{Code: &renamed})
	assert.ErrorIs(t, err, ErrCodeTaken)

	stored, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "SPRING", stored.Code)
}
