// cmd/notifier/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	if !cfg.UsesEmailQueue() {
		logger.Fatal("RABBITMQ_URL is not set, nothing to consume")
	}

	mq, err := rabbitmq.NewConnection(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer mq.Close()

	consumer := rabbitmq.NewEmailConsumer(
		email.NewEmailService(cfg, logger),
		rabbitmq.NewEmailPublisher(mq.Channel, mq.Queue),
		cfg.RabbitMQ.EmailMaxAttempts,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"provider": cfg.Email.Provider,
		"queue":    mq.Queue,
	}).Info("Starting email notifier")

	if err := consumer.Run(ctx, mq.Channel, mq.Queue, cfg.RabbitMQ.Prefetch); err != nil {
		logger.WithError(err).Error("Email consumer stopped")
		os.Exit(1)
	}
	logger.Info("Email notifier shut down")
}
