// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyCart         = apperr.New(apperr.ErrInvalid, "cart is empty")
	ErrInsufficientStock = cart.ErrInsufficientStock
)

// Service turns a cart into an order
type Service struct {
	db     *gorm.DB
	carts  *cart.Service
	orders *order.Service
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, carts *cart.Service, orders *order.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		carts:  carts,
		orders: orders,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderRequest represents checkout data
type PlaceOrderRequest struct {
	ShippingAddress order.Address       `json:"shipping_address" binding:"required"`
	PaymentMethod   order.PaymentMethod `json:"payment_method" binding:"required"`
	Notes           string              `json:"notes" binding:"max=1000"`
}

// PaymentMethodOption describes an accepted payment method
type PaymentMethodOption struct {
	ID          order.PaymentMethod `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
}

// CheckoutSummary is the preview shown before placing an order
type CheckoutSummary struct {
	Cart           *cart.CartResponse    `json:"cart"`
	PaymentMethods []PaymentMethodOption `json:"payment_methods"`
	Problems       []string              `json:"problems,omitempty"`
	Ready          bool                  `json:"ready"`
}

// GetSummary previews the checkout and lists what would block it
func (s *Service) GetSummary(ctx context.Context, userID uint) (*CheckoutSummary, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CheckoutSummary{Cart: c, PaymentMethods: paymentMethods()}
	if len(c.Items) == 0 {
		summary.Problems = append(summary.Problems, ErrEmptyCart.Error())
	}
	for _, item := range c.Items {
		if item.Quantity > item.Stock {
			summary.Problems = append(summary.Problems,
				fmt.Sprintf("%s: only %d left in stock", item.Product.Name, item.Stock))
		}
	}
	if c.CouponCode != "" {
		if _, err := s.carts.CouponService().FindUsable(ctx, c.CouponCode); err != nil {
			summary.Problems = append(summary.Problems, fmt.Sprintf("coupon %s can no longer be used", c.CouponCode))
		}
	}
	summary.Ready = len(summary.Problems) == 0
	return summary, nil
}

// PlaceOrder converts the user's cart into a pending order. Stock, coupon use,
// order rows and cart clearing commit together or not at all.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	if !order.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, order.ErrInvalidPaymentMethod
	}
	if _, err := s.carts.GetCart(ctx, userID); err != nil {
		return nil, err
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&c).Error; err != nil {
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		var items []cart.CartItem
		if err := tx.Where("cart_id = ?", c.ID).Order("product_id ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var u user.User
		if err := tx.Select("id", "email").First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrUserNotFound
			}
			return fmt.Errorf("failed to get user email: %w", err)
		}

		lines := make([]cart.Line, 0, len(items))
		orderItems := make([]order.OrderItem, 0, len(items))
		for _, item := range items {
			p, err := reserveStock(tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			lines = append(lines, cart.Line{Price: p.Price, Quantity: item.Quantity})
			orderItems = append(orderItems, order.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    item.Quantity,
				TotalPrice:  p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
			})
		}

		discount := decimal.Zero
		couponCode := ""
		var couponID *uint
		if c.CouponID != nil {
			var applied coupon.Coupon
			if err := tx.First(&applied, *c.CouponID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return coupon.ErrCouponNotUsable
				}
				return fmt.Errorf("failed to load coupon: %w", err)
			}
			if !applied.IsUsable(s.now()) {
				return coupon.ErrCouponNotUsable
			}
			if err := coupon.Redeem(tx, applied.ID); err != nil {
				return err
			}
			discount = applied.Discount
			couponCode = applied.Code
			couponID = &applied.ID
		}
		totals := cart.CalculateTotals(lines, discount)

		o := order.Order{
			// replaced by the numbered form once the id is known
			OrderNumber:     "TMP-" + uuid.NewString(),
			UserID:          userID,
			Email:           u.Email,
			Status:          order.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			Subtotal:        totals.SubTotal,
			DiscountAmount:  totals.DiscountAmount,
			TotalPrice:      totals.TotalAmount,
			CouponID:        couponID,
			CouponCode:      couponCode,
			Notes:           strings.TrimSpace(req.Notes),
			ShippingAddress: req.ShippingAddress,
			Items:           orderItems,
		}
		if err := tx.Create(&o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		number := o.GenerateOrderNumber(s.now())
		if err := tx.Model(&order.Order{}).Where("id = ?", o.ID).Update("order_number", number).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}
		if err := order.AddStatusHistory(tx, o.ID, order.OrderStatusPending, "Order placed", userID); err != nil {
			return err
		}
		if err := cart.Empty(tx, c.ID); err != nil {
			return err
		}

		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
		"user_id":      userID,
		"total":        placed.TotalPrice.StringFixed(2),
	}).Info("Order placed")

	s.orders.AfterPlaced(ctx, placed)
	return placed, nil
}

// reserveStock locks the product row and takes quantity units from it
func reserveStock(tx *gorm.DB, productID uint, quantity int) (*product.Product, error) {
	var p product.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	if p.Stock < quantity {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update product stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
	}
	return &p, nil
}

func paymentMethods() []PaymentMethodOption {
	return []PaymentMethodOption{
		{ID: order.PaymentCashOnDelivery, Name: "Cash on delivery", Description: "Pay the courier when the order arrives"},
		{ID: order.PaymentCard, Name: "Card", Description: "Pay by card on delivery or pickup"},
	}
}
