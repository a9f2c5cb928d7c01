// cmd/mailcheck/main.go
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/sirupsen/logrus"
)

// mailcheck sends one test message through the configured delivery path
func main() {
	to := flag.String("to", "", "recipient address")
	direct := flag.Bool("direct", false, "bypass the queue and call the provider")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	if *to == "" {
		logger.Fatal("Usage: mailcheck -to someone@example.com [-direct]")
	}

	var sender email.Sender = email.NewEmailService(cfg, logger)
	via := cfg.Email.Provider
	if cfg.UsesEmailQueue() && !*direct {
		mq, err := rabbitmq.NewConnection(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer mq.Close()
		sender = rabbitmq.NewEmailPublisher(mq.Channel, mq.Queue)
		via = "queue:" + mq.Queue
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := &email.Email{
		To:          []string{*to},
		Subject:     cfg.App.Name + " test email",
		HTMLContent: "<h1>It works</h1><p>Email delivery is configured correctly.</p>",
		TextContent: "It works. Email delivery is configured correctly.",
		Type:        "test",
	}
	if err := sender.SendEmail(ctx, msg); err != nil {
		logger.WithError(err).WithField("via", via).Error("Test email failed")
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{"to": *to, "via": via}).Info("Test email sent")
}
