package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/email/emailtest"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type eventRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *eventRecorder) Publish(event string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, event)
}

type fixture struct {
	svc     *Service
	carts   *cart.Service
	coupons *coupon.Service
	db      *gorm.DB
	mail    *emailtest.Recorder
	events  *eventRecorder
	buyer   *user.User
	phone   *product.Product
	cable   *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &product.Category{}, &product.Product{}, &product.ProductImage{},
		&coupon.Coupon{}, &cart.Cart{}, &cart.CartItem{},
		&order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{})

	cfg := &config.Config{
		App:   config.AppConfig{Name: "Eltech"},
		Email: config.EmailConfig{BaseURL: "https://shop.test", TemplateDir: t.TempDir()},
	}
	rec := &emailtest.Recorder{}
	mailer, err := email.NewMailer(cfg, rec, logging.Discard())
	require.NoError(t, err)

	buyer := user.User{Email: "buyer@example.com", FirstName: "Ada", IsActive: true}
	require.NoError(t, db.Create(&buyer).Error)
	cat := product.Category{Name: "Phones"}
	require.NoError(t, db.Create(&cat).Error)
	phone := product.Product{Name: "Pixel", Price: decimal.RequireFromString("200.00"), Stock: 2, CategoryID: cat.ID}
	cable := product.Product{Name: "Cable", Price: decimal.RequireFromString("9.99"), Stock: 5, CategoryID: cat.ID}
	require.NoError(t, db.Create(&phone).Error)
	require.NoError(t, db.Create(&cable).Error)

	events := &eventRecorder{}
	coupons := coupon.NewService(db, logging.Discard())
	carts := cart.NewService(db, coupons, logging.Discard())
	orders := order.NewService(db, mailer, nil, events, logging.Discard())

	return &fixture{
		svc:     NewService(db, carts, orders, logging.Discard()),
		carts:   carts,
		coupons: coupons,
		db:      db,
		mail:    rec,
		events:  events,
		buyer:   &buyer,
		phone:   &phone,
		cable:   &cable,
	}
}

func validRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		ShippingAddress: order.Address{
			FullName: "Ada Byron", Phone: "+44 20 0000", AddressLine: "1 Main St",
			City: "London", PostalCode: "N1", Country: "UK",
		},
		PaymentMethod: order.PaymentCashOnDelivery,
	}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ten, err := f.coupons.Create(ctx, &coupon.CouponCreateRequest{Code: "TEN", Discount: decimal.NewFromInt(10), UsesLimit: 1})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.phone.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.cable.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.ApplyCoupon(ctx, f.buyer.ID, "TEN")
	require.NoError(t, err)

	o, err := f.svc.PlaceOrder(ctx, f.buyer.ID, validRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{8}-\d{5}$`, o.OrderNumber)
	assert.Equal(t, order.OrderStatusPending, o.Status)
	assert.Equal(t, "buyer@example.com", o.Email)
	assert.Equal(t, "TEN", o.CouponCode)
	require.NotNil(t, o.CouponID)
	assert.Equal(t, ten.ID, *o.CouponID)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("409.99")), o.Subtotal.String())
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("368.99")), o.TotalPrice.String())
	assert.True(t, o.DiscountAmount.Equal(decimal.RequireFromString("41.00")), o.DiscountAmount.String())
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Pixel", o.Items[0].ProductName)
	require.Len(t, o.StatusHistory, 1)

	assert.Equal(t, 0, f.stock(t, f.phone.ID))
	assert.Equal(t, 4, f.stock(t, f.cable.ID))

	c, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Empty(t, c.CouponCode)

	_, err = f.coupons.FindUsable(ctx, "TEN")
	assert.ErrorIs(t, err, coupon.ErrCouponNotUsable, "the single use was redeemed")

	assert.Len(t, f.mail.SentOfType(email.EmailTypeOrderConfirmation), 1)
	assert.Equal(t, []string{order.EventOrderCreated}, f.events.names)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, validRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))
}

func TestPlaceOrderRejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.PaymentMethod = "barter"
	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, req)
	assert.ErrorIs(t, err, order.ErrInvalidPaymentMethod)
}

func TestPlaceOrderRollsBackOnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.cable.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.phone.ID, Quantity: 2})
	require.NoError(t, err)

	// another buyer takes cables after they were carted
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.cable.ID).Update("stock", 1).Error)

	_, err = f.svc.PlaceOrder(ctx, f.buyer.ID, validRequest())
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, apperr.Message(err), "Cable")

	assert.Equal(t, 2, f.stock(t, f.phone.ID), "earlier decrements roll back")
	assert.Equal(t, 1, f.stock(t, f.cable.ID))
	assert.Zero(t, f.count(t, &order.Order{}))

	c, err := f.carts.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2, "cart survives a failed checkout")
	assert.Empty(t, f.events.names)
}

func TestPlaceOrderRollsBackOnExhaustedCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cp, err := f.coupons.Create(ctx, &coupon.CouponCreateRequest{Code: "ONCE", Discount: decimal.NewFromInt(50), UsesLimit: 1})
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.cable.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.ApplyCoupon(ctx, f.buyer.ID, "ONCE")
	require.NoError(t, err)

	// used up elsewhere between apply and checkout
	require.NoError(t, coupon.Redeem(f.db, cp.ID))

	_, err = f.svc.PlaceOrder(ctx, f.buyer.ID, validRequest())
	assert.ErrorIs(t, err, coupon.ErrCouponNotUsable)
	assert.Equal(t, 5, f.stock(t, f.cable.ID))
	assert.Zero(t, f.count(t, &order.Order{}))
	assert.Zero(t, f.count(t, &order.OrderItem{}))
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.svc.GetSummary(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.False(t, s.Ready)
	assert.Len(t, s.PaymentMethods, 2)

	_, err = f.carts.AddToCart(ctx, f.buyer.ID, &cart.AddToCartRequest{ProductID: f.phone.ID, Quantity: 2})
	require.NoError(t, err)
	s, err = f.svc.GetSummary(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.True(t, s.Ready)

	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.phone.ID).Update("stock", 1).Error)
	s, err = f.svc.GetSummary(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.False(t, s.Ready)
	require.Len(t, s.Problems, 1)
	assert.Contains(t, s.Problems[0], "Pixel")
}
