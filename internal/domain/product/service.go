// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestockNotifier is told when a product's stock goes from zero to positive
type RestockNotifier interface {
	NotifyRestock(ctx context.Context, product *Product) error
}

// Service handles catalog business logic
type Service struct {
	db       *gorm.DB
	notifier RestockNotifier
	logger   *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, notifier RestockNotifier, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	pagination.Params
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	IsFeatured *bool  `form:"is_featured"`
	IsTrending *bool  `form:"is_trending"`
	IsHot      *bool  `form:"is_hot"`
	IsOnSale   *bool  `form:"is_on_sale"`
	IsPopular  bool   `form:"is_popular"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	IsHot       bool            `json:"is_hot"`
	IsOnSale    bool            `json:"is_on_sale"`
	SaleAmount  decimal.Decimal `json:"sale_amount"`
	IsFeatured  bool            `json:"is_featured"`
	IsTrending  bool            `json:"is_trending"`
	Features    []string        `json:"features"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *uint            `json:"category_id"`
	IsHot       *bool            `json:"is_hot"`
	IsOnSale    *bool            `json:"is_on_sale"`
	SaleAmount  *decimal.Decimal `json:"sale_amount"`
	IsFeatured  *bool            `json:"is_featured"`
	IsTrending  *bool            `json:"is_trending"`
}

// ListProducts returns one page of product summaries
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) ([]ProductSummary, pagination.Meta, error) {
	query := s.db.WithContext(ctx).Model(&Product{})

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	flags := []struct {
		column string
		value  *bool
	}{
		{"is_featured", req.IsFeatured},
		{"is_trending", req.IsTrending},
		{"is_hot", req.IsHot},
		{"is_on_sale", req.IsOnSale},
	}
	for _, f := range flags {
		if f.value != nil {
			query = query.Where(f.column+" = ?", *f.value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count products: %w", err)
	}

	if req.IsPopular {
		query = query.Order("view_count DESC, id DESC")
	} else {
		query = query.Order("created_at DESC, id DESC")
	}

	page := req.Params.Normalize()
	var products []Product
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to retrieve products: %w", err)
	}

	summaries := make([]ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, products[i].Summary())
	}
	return summaries, pagination.NewMeta(page, total), nil
}

// GetProduct returns the full product view and counts the visit
func (s *Service) GetProduct(ctx context.Context, id uint) (*ProductDetail, error) {
	db := s.db.WithContext(ctx)

	result := db.Model(&Product{}).Where("id = ?", id).UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to count product view: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	var agg struct {
		Average float64
		Count   int64
	}
	err = db.Model(&Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", id).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return &ProductDetail{
		Product:       *product,
		AverageRating: decimal.NewFromFloat(agg.Average).Round(2).InexactFloat64(),
		RatingCount:   agg.Count,
	}, nil
}

// GetByID loads a product without side effects
func (s *Service) GetByID(ctx context.Context, id uint) (*Product, error) {
	return s.loadProduct(ctx, id)
}

func (s *Service) loadProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Features", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// CreateProduct validates and stores a new product with its features
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	if err := validateMoney(req.Price, req.SaleAmount); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, ErrNegativeStock
	}

	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsHot:       req.IsHot,
		IsOnSale:    req.IsOnSale,
		SaleAmount:  req.SaleAmount.Round(2),
		IsFeatured:  req.IsFeatured,
		IsTrending:  req.IsTrending,
	}
	for _, f := range req.Features {
		if f = strings.TrimSpace(f); f != "" {
			product.Features = append(product.Features, ProductFeature{Feature: f})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, req.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadProduct(ctx, product.ID)
}

// UpdateProduct applies the provided fields. A stock change from zero to
// positive notifies waiting customers once the update has committed.
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	var before, after Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to find product: %w", err)
		}
		after = before

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			after.Price = req.Price.Round(2)
			updates["price"] = after.Price
		}
		if req.SaleAmount != nil {
			after.SaleAmount = req.SaleAmount.Round(2)
			updates["sale_amount"] = after.SaleAmount
		}
		if req.Price != nil || req.SaleAmount != nil {
			if err := validateMoney(after.Price, after.SaleAmount); err != nil {
				return err
			}
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				return ErrNegativeStock
			}
			after.Stock = *req.Stock
			updates["stock"] = *req.Stock
		}
		if req.CategoryID != nil {
			if err := categoryExists(tx, *req.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *req.CategoryID
		}
		for column, value := range map[string]*bool{
			"is_hot":      req.IsHot,
			"is_on_sale":  req.IsOnSale,
			"is_featured": req.IsFeatured,
			"is_trending": req.IsTrending,
		} {
			if value != nil {
				updates[column] = *value
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterStockChange(ctx, before.Stock, product)
	return product, nil
}

// UpdateStock sets the stock of a product
func (s *Service) UpdateStock(ctx context.Context, id uint, stock int) (*Product, error) {
	return s.UpdateProduct(ctx, id, &ProductUpdateRequest{Stock: &stock})
}

// DeleteProduct removes a product and its catalog children
func (s *Service) DeleteProduct(ctx context.Context, id uint) ([]string, error) {
	var images []ProductImage

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Find(&images).Error; err != nil {
			return fmt.Errorf("failed to load product images: %w", err)
		}
		for _, child := range []interface{}{&ProductImage{}, &ProductFeature{}, &Rating{}, &Review{}, &WeeklyDeal{}} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete product children: %w", err)
			}
		}

		result := tx.Delete(&Product{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(images))
	for _, img := range images {
		paths = append(paths, img.Image)
	}
	return paths, nil
}

// AddImage attaches a stored image to a product
func (s *Service) AddImage(ctx context.Context, productID uint, path string) (*ProductImage, error) {
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	image := ProductImage{ProductID: productID, Image: path}
	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		return nil, fmt.Errorf("failed to add image: %w", err)
	}
	return &image, nil
}

// DeleteImage detaches an image and returns its stored path
func (s *Service) DeleteImage(ctx context.Context, productID, imageID uint) (string, error) {
	var image ProductImage
	err := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrImageNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find image: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&image).Error; err != nil {
		return "", fmt.Errorf("failed to delete image: %w", err)
	}
	return image.Image, nil
}

// AddFeature appends a feature line to a product
func (s *Service) AddFeature(ctx context.Context, productID uint, feature string) (*ProductFeature, error) {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return nil, apperr.Invalidf("feature cannot be empty")
	}
	if _, err := s.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	f := ProductFeature{ProductID: productID, Feature: feature}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, fmt.Errorf("failed to add feature: %w", err)
	}
	return &f, nil
}

// DeleteFeature removes a feature line from a product
func (s *Service) DeleteFeature(ctx context.Context, productID, featureID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", featureID, productID).Delete(&ProductFeature{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete feature: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFeatureNotFound
	}
	return nil
}

// WeeklyDealRequest represents weekly deal creation data
type WeeklyDealRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	DealTime  string `json:"deal_time" binding:"required"`
}

// GetWeeklyDeal returns the deal with the latest deal time
func (s *Service) GetWeeklyDeal(ctx context.Context) (*WeeklyDeal, error) {
	var deal WeeklyDeal
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("deal_time DESC, id DESC").
		First(&deal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoWeeklyDeal
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly deal: %w", err)
	}
	return &deal, nil
}

// CreateWeeklyDeal promotes a product until the given time
func (s *Service) CreateWeeklyDeal(ctx context.Context, req *WeeklyDealRequest) (*WeeklyDeal, error) {
	dealTime, err := parseDealTime(req.DealTime)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	deal := WeeklyDeal{ProductID: req.ProductID, DealTime: dealTime}
	if err := s.db.WithContext(ctx).Create(&deal).Error; err != nil {
		return nil, fmt.Errorf("failed to create weekly deal: %w", err)
	}

	err = s.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&deal, deal.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload weekly deal: %w", err)
	}
	return &deal, nil
}

// afterStockChange runs the restock notifier for a 0 -> positive transition
func (s *Service) afterStockChange(ctx context.Context, oldStock int, product *Product) {
	if oldStock != 0 || product.Stock <= 0 || s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyRestock(ctx, product); err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Error("Failed to send restock notifications")
	}
}

func parseDealTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Invalidf("deal_time must be RFC3339 or YYYY-MM-DD HH:MM")
}

func validateMoney(price, sale decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if sale.IsNegative() || sale.GreaterThan(price) {
		return ErrInvalidSale
	}
	return nil
}

func categoryExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
