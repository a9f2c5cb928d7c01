// internal/pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/eltech/store-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var ErrWeakPassword = errors.New("weak password")

var commonPasswords = []string{
	"password", "123456", "qwerty", "letmein", "welcome",
	"monkey", "dragon", "football", "admin", "iloveyou",
}

// PasswordManager hashes and checks account passwords
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a password manager using the configured bcrypt cost
func NewPasswordManager(cfg *config.Config) *PasswordManager {
	cost := cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordManager{cost: cost}
}

// HashPassword validates strength and returns the bcrypt hash
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := p.ValidatePassword(password); err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword compares a password with a stored hash. An empty hash never matches.
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword enforces the password policy
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: must be no more than 72 characters long", ErrWeakPassword)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrWeakPassword)
	case !hasNumber:
		return fmt.Errorf("%w: must contain at least one number", ErrWeakPassword)
	case !hasSpecial:
		return fmt.Errorf("%w: must contain at least one special character", ErrWeakPassword)
	}

	return checkCommonPatterns(password)
}

func checkCommonPatterns(password string) error {
	lower := strings.ToLower(password)
	runes := []rune(lower)

	for i := 0; i+2 < len(runes); i++ {
		a, b, c := runes[i], runes[i+1], runes[i+2]
		if a == b && b == c {
			return fmt.Errorf("%w: cannot contain more than 2 repeating characters", ErrWeakPassword)
		}
		sequential := b == a+1 && c == b+1
		if sequential && (unicode.IsLetter(a) || unicode.IsDigit(a)) {
			return fmt.Errorf("%w: cannot contain sequential characters", ErrWeakPassword)
		}
	}

	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			return fmt.Errorf("%w: too common and easily guessable", ErrWeakPassword)
		}
	}
	return nil
}
