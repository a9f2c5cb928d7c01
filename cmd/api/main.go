// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/checkout"
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/favorite"
	"github.com/eltech/store-backend/internal/domain/offering"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/eltech/store-backend/internal/domain/post"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/restock"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/infrastructure/database/postgres"
	"github.com/eltech/store-backend/internal/infrastructure/database/redis"
	"github.com/eltech/store-backend/internal/infrastructure/messaging/rabbitmq"
	httpserver "github.com/eltech/store-backend/internal/interfaces/http"
	"github.com/eltech/store-backend/internal/interfaces/http/middleware"
	"github.com/eltech/store-backend/internal/interfaces/http/routes"
	"github.com/eltech/store-backend/internal/interfaces/http/ws"
	"github.com/eltech/store-backend/internal/pkg/auth"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/eltech/store-backend/internal/pkg/pdf"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	logger.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting API")

	db, err := postgres.NewConnection(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), logger)
	if err := migration.RunAutoMigrations(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		logger.WithError(err).Warn("Index creation failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(cfg); err != nil {
			logger.WithError(err).Warn("Data seeding failed")
		}
	}

	// Emails go through the queue when one is configured, otherwise they are sent inline
	var sender email.Sender = email.NewEmailService(cfg, logger)
	if cfg.UsesEmailQueue() {
		mq, err := rabbitmq.NewConnection(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer mq.Close()
		sender = rabbitmq.NewEmailPublisher(mq.Channel, mq.Queue)
	}

	mailer, err := email.NewMailer(cfg, sender, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load email templates")
	}

	gormDB := db.GetDB()
	hub := ws.NewHub(middleware.OriginChecker(cfg), logger)

	restockService := restock.NewService(gormDB, mailer, logger)
	productService := product.NewService(gormDB, restockService, logger)
	couponService := coupon.NewService(gormDB, logger)
	cartService := cart.NewService(gormDB, couponService, logger)
	orderService := order.NewService(gormDB, mailer, restockService, hub, logger)

	services := &routes.Services{
		Users:     user.NewService(gormDB, cfg, redis.NewTokenStore(redisClient.GetClient()), mailer, logger),
		UserAdmin: user.NewAdminService(gormDB, logger),
		Products:  productService,
		Restock:   restockService,
		Coupons:   couponService,
		Carts:     cartService,
		Checkout:  checkout.NewService(gormDB, cartService, orderService, logger),
		Orders:    orderService,
		Posts:     post.NewService(gormDB, logger),
		Favorites: favorite.NewService(gormDB, cartService, logger),
		Offerings: offering.NewCatalog(gormDB, logger),
		Invoices:  pdf.NewInvoiceGenerator(cfg),
		Files:     storage.NewLocal(cfg, logger),
		JWT:       auth.NewJWTManager(cfg),
		Hub:       hub,
	}

	server := httpserver.NewServer(cfg, services, db, redisClient, redisClient.GetClient(), logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logger.Info("Server shutdown completed")
}
