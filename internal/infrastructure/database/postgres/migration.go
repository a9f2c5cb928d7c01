// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/favorite"
	"github.com/eltech/store-backend/internal/domain/offering"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/eltech/store-backend/internal/domain/post"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/restock"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{db: db, logger: logger}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductFeature{},
		&product.Rating{},
		&product.Review{},
		&product.WeeklyDeal{},

		&coupon.Coupon{},
		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&restock.Notification{},
		&post.Post{},
		&post.Comment{},
		&favorite.Favorite{},
		&offering.Service{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes that struct tags cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_view_count ON products(view_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_flags ON products(is_featured, is_trending, is_hot, is_on_sale)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_weekly_deals_deal_time ON weekly_deals(deal_time DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_posts_category_created ON posts(category_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comments_post_parent ON comments(post_id, parent_id)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{"created": len(indexes) - failed, "failed": failed}).Info("Database indexes ensured")
	if failed > 0 {
		return fmt.Errorf("failed to create %d indexes", failed)
	}
	return nil
}

// SeedInitialData inserts development data: categories, an admin user and sample products
func (m *Migration) SeedInitialData(cfg *config.Config) error {
	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(cfg); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

var seedCategoryNames = []string{"Phones", "Laptops", "Audio", "Accessories", "Smart Home"}

func (m *Migration) seedCategories() error {
	for _, name := range seedCategoryNames {
		category := product.Category{Name: name}
		if err := m.db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedAdminUser(cfg *config.Config) error {
	if cfg.App.SeedAdminPass == "" {
		m.logger.Warn("SEED_ADMIN_PASSWORD is empty, skipping admin user seed")
		return nil
	}

	email := user.NormalizeEmail(cfg.App.SeedAdminEmail)
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := auth.NewPasswordManager(cfg).HashPassword(cfg.App.SeedAdminPass)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Email:         email,
		Password:      hashed,
		FirstName:     "Admin",
		LastName:      "User",
		IsActive:      true,
		IsAdmin:       true,
		EmailVerified: true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}
	m.logger.WithField("email", email).Info("Admin user created")
	return nil
}

type seedProduct struct {
	category string
	product  product.Product
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	samples := []seedProduct{
		{"Phones", product.Product{Name: "Pixel 8", Description: "6.2 inch OLED, 128GB", Price: decimal.RequireFromString("699.00"), Stock: 25, IsFeatured: true, IsHot: true}},
		{"Phones", product.Product{Name: "Galaxy A55", Description: "6.6 inch AMOLED, 256GB", Price: decimal.RequireFromString("449.99"), Stock: 40, IsTrending: true}},
		{"Laptops", product.Product{Name: "ThinkPad X1 Carbon", Description: "14 inch, 32GB RAM, 1TB SSD", Price: decimal.RequireFromString("1899.00"), Stock: 8, IsFeatured: true}},
		{"Audio", product.Product{Name: "WH-1000XM5", Description: "Noise cancelling headphones", Price: decimal.RequireFromString("399.99"), Stock: 15, IsOnSale: true, SaleAmount: decimal.RequireFromString("349.99")}},
		{"Accessories", product.Product{Name: "USB-C Cable 2m", Description: "100W braided cable", Price: decimal.RequireFromString("12.50"), Stock: 200}},
		{"Smart Home", product.Product{Name: "Smart Plug", Description: "Wi-Fi plug with energy monitoring", Price: decimal.RequireFromString("24.90"), Stock: 0}},
	}

	for _, s := range samples {
		var category product.Category
		if err := m.db.Where("name = ?", s.category).First(&category).Error; err != nil {
			return fmt.Errorf("category %s: %w", s.category, err)
		}
		p := s.product
		p.CategoryID = category.ID
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("product %s: %w", p.Name, err)
		}
	}
	m.logger.WithField("count", len(samples)).Info("Sample products created")
	return nil
}
