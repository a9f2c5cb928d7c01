// cmd/hashpass/main.go
package main

import (
	"fmt"
	"os"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/pkg/auth"
	"github.com/sirupsen/logrus"
)

// hashpass prints a bcrypt hash for manually provisioning an account
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: hashpass <password>")
	}
	password := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	pm := auth.NewPasswordManager(cfg)

	if err := pm.ValidatePassword(password); err != nil {
		logrus.WithError(err).Warn("Password does not meet the registration policy")
	}

	hash, err := pm.HashPassword(password)
	if err != nil {
		logrus.Fatalf("Error generating hash: %v", err)
	}
	if err := pm.VerifyPassword(password, hash); err != nil {
		logrus.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Println(hash)
}
