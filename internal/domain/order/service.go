// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventPublisher broadcasts order events to live listeners
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Service handles order business logic
type Service struct {
	db       *gorm.DB
	mailer   *email.Mailer
	notifier product.RestockNotifier
	events   EventPublisher
	logger   *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, mailer *email.Mailer, notifier product.RestockNotifier, events EventPublisher, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		mailer:   mailer,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	pagination.Params
	Status OrderStatus `form:"status"`
	UserID uint        `form:"user_id"`
}

// StatusUpdateRequest represents an admin status change
type StatusUpdateRequest struct {
	Status  OrderStatus `json:"status" binding:"required"`
	Comment string      `json:"comment"`
}

// CancelRequest represents a customer cancellation
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// StatusEvent is the payload of order.status_changed
type StatusEvent struct {
	OrderID     uint        `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      uint        `json:"user_id"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
}

// CreatedEvent is the payload of order.created
type CreatedEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      uint   `json:"user_id"`
	Total       string `json:"total"`
	ItemCount   int    `json:"item_count"`
}

// ListOrders returns orders for the admin, optionally filtered by status and user
func (s *Service) ListOrders(ctx context.Context, req *OrderListRequest) ([]Order, pagination.Meta, error) {
	query := s.db.WithContext(ctx).Model(&Order{})

	if req.Status != "" {
		if !IsValidStatus(req.Status) {
			return nil, pagination.Meta{}, ErrInvalidStatus
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count orders: %w", err)
	}

	page := req.Params.Normalize()
	var orders []Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, pagination.NewMeta(page, total), nil
}

// ListUserOrders returns the orders placed by userID
func (s *Service) ListUserOrders(ctx context.Context, userID uint, req *OrderListRequest) ([]Order, pagination.Meta, error) {
	scoped := *req
	scoped.UserID = userID
	return s.ListOrders(ctx, &scoped)
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	return loadOrder(s.db.WithContext(ctx), id)
}

// GetUserOrder retrieves an order owned by userID. Other users' orders are not found.
func (s *Service) GetUserOrder(ctx context.Context, userID, id uint) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// CancelOrder cancels a pending order of userID, restoring stock and the coupon use
func (s *Service) CancelOrder(ctx context.Context, userID, id uint, reason string) (*Order, error) {
	comment := "Cancelled by customer"
	if reason = strings.TrimSpace(reason); reason != "" {
		comment = fmt.Sprintf("Cancelled by customer: %s", reason)
	}
	return s.transition(ctx, id, &userID, OrderStatusCancelled, comment, userID)
}

// UpdateStatus moves an order to a new status on behalf of an admin
func (s *Service) UpdateStatus(ctx context.Context, adminID, id uint, req *StatusUpdateRequest) (*Order, error) {
	if !IsValidStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	return s.transition(ctx, id, nil, req.Status, strings.TrimSpace(req.Comment), adminID)
}

// AfterPlaced sends the confirmation email and announces a new order
func (s *Service) AfterPlaced(ctx context.Context, o *Order) {
	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(ctx, o.Email, o.ShippingAddress.FullName, ConfirmationEmail(o)); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to send order confirmation")
		}
	}
	s.publish(EventOrderCreated, CreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Total:       o.TotalPrice.StringFixed(2),
		ItemCount:   len(o.Items),
	})
}

// transition applies one status change in a transaction. When ownerID is set
// the order must belong to that user and only cancellation is allowed.
func (s *Service) transition(ctx context.Context, id uint, ownerID *uint, to OrderStatus, comment string, by uint) (*Order, error) {
	var from OrderStatus
	var restocked []uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if ownerID != nil {
			if o.UserID != *ownerID {
				return ErrOrderNotFound
			}
			if !o.CanBeCancelled() {
				return ErrCannotCancel
			}
		}
		if !o.CanTransitionTo(to) {
			return ErrInvalidTransition
		}
		from = o.Status

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": to}
		switch to {
		case OrderStatusShipped:
			updates["shipped_at"] = now
		case OrderStatusDelivered:
			updates["delivered_at"] = now
		case OrderStatusCancelled:
			updates["cancelled_at"] = now
			ids, err := restoreStock(tx, o.ID)
			if err != nil {
				return err
			}
			restocked = ids
			if err := coupon.Release(tx, o.CouponID); err != nil {
				return err
			}
		}

		if err := tx.Model(&Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if comment == "" {
			comment = fmt.Sprintf("Status changed from %s to %s", from, to)
		}
		return AddStatusHistory(tx, o.ID, to, comment, by)
	})
	if err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyRestocked(ctx, restocked)
	s.afterStatusChange(ctx, o, from)
	return o, nil
}

// AddStatusHistory records a status change inside tx
func AddStatusHistory(tx *gorm.DB, orderID uint, status OrderStatus, comment string, by uint) error {
	history := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: by,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}

// ConfirmationEmail builds the receipt template data of an order
func ConfirmationEmail(o *Order) email.OrderConfirmationData {
	lines := make([]email.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, email.OrderLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.TotalPrice,
		})
	}

	a := o.ShippingAddress
	return email.OrderConfirmationData{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderDate:       o.CreatedAt.Format("January 2, 2006"),
		Items:           lines,
		Subtotal:        o.Subtotal,
		Discount:        o.DiscountAmount,
		Total:           o.TotalPrice,
		CouponCode:      o.CouponCode,
		PaymentMethod:   strings.ReplaceAll(string(o.PaymentMethod), "_", " "),
		ShippingAddress: fmt.Sprintf("%s, %s, %s %s, %s", a.FullName, a.AddressLine, a.PostalCode, a.City, a.Country),
	}
}

func (s *Service) afterStatusChange(ctx context.Context, o *Order, from OrderStatus) {
	if s.mailer != nil {
		data := email.OrderStatusUpdateData{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			Status:        string(o.Status),
			StatusMessage: StatusMessage(o.Status),
		}
		if err := s.mailer.SendOrderStatusUpdate(ctx, o.Email, o.ShippingAddress.FullName, data); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to send order status email")
		}
	}
	s.publish(EventOrderStatusChanged, StatusEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		From:        from,
		To:          o.Status,
	})
}

func (s *Service) notifyRestocked(ctx context.Context, productIDs []uint) {
	if s.notifier == nil {
		return
	}
	for _, id := range productIDs {
		var p product.Product
		if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
			s.logger.WithError(err).WithField("product_id", id).Warn("Restocked product vanished before notification")
			continue
		}
		if err := s.notifier.NotifyRestock(ctx, &p); err != nil {
			s.logger.WithError(err).WithField("product_id", id).Error("Failed to send restock notifications")
		}
	}
}

func (s *Service) publish(event string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

// restoreStock returns the items of an order to stock and reports the products
// that were sold out before.
func restoreStock(tx *gorm.DB, orderID uint) ([]uint, error) {
	var items []OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var restocked []uint
	for _, item := range items {
		var p product.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "stock").First(&p, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the product was removed from the catalog after the sale
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock product: %w", err)
		}

		if err := tx.Model(&product.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
		if p.Stock == 0 {
			restocked = append(restocked, item.ProductID)
		}
	}
	return restocked, nil
}

func loadOrder(db *gorm.DB, id uint) (*Order, error) {
	var o Order
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}
