// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/infrastructure/database/redis"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/auth"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	purposeEmailVerify   = "email_verify"
	purposePasswordReset = "password_reset"
	birthDateLayout      = "2006-01-02"
)

// TokenStore issues and consumes single-use email tokens
type TokenStore interface {
	Issue(ctx context.Context, purpose string, userID uint, ttl time.Duration) (string, error)
	Consume(ctx context.Context, purpose, token string) (uint, error)
}

// Service handles account business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	tokens          TokenStore
	mailer          *email.Mailer
	logger          *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, tokens TokenStore, mailer *email.Mailer, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		tokens:          tokens,
		mailer:          mailer,
		logger:          logger,
	}
}

// ProfileFields are the optional profile attributes a user may set
type ProfileFields struct {
	FirstName        *string `json:"first_name" binding:"omitempty,max=100"`
	LastName         *string `json:"last_name" binding:"omitempty,max=100"`
	MobilePhone      *string `json:"mobile_phone" binding:"omitempty,max=20"`
	BirthDate        *string `json:"birth_date"`
	Country          *string `json:"country" binding:"omitempty,max=100"`
	FacebookProfile  *string `json:"facebook_profile" binding:"omitempty,max=255"`
	InstagramProfile *string `json:"instagram_profile" binding:"omitempty,max=255"`
	TwitterProfile   *string `json:"twitter_profile" binding:"omitempty,max=255"`
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
	ProfileFields
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates an account, or upgrades a newsletter-only row for the same email
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	addr := NormalizeEmail(req.Email)
	var user User

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing User
		err := tx.Where("email = ?", addr).First(&existing).Error
		switch {
		case err == nil:
			if existing.HasPassword() {
				return ErrEmailTaken
			}
			user = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = User{Email: addr}
		default:
			return fmt.Errorf("failed to look up email: %w", err)
		}

		if err := applyProfile(&user, &req.ProfileFields); err != nil {
			return err
		}
		user.Password = hashedPassword
		user.IsActive = true

		if err := tx.Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, &user)

	return s.authResponse(&user, "")
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	return s.authResponse(&user, "")
}

// RefreshToken issues a new access token from a refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if s.config.JWT.RefreshTokenRotation {
		return s.authResponse(user, "")
	}
	return s.authResponse(user, refreshToken)
}

// GetProfile gets an active user's profile
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	return s.activeUser(ctx, userID)
}

// UpdateProfile applies the provided profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *ProfileFields) (*User, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyProfile(user, req); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(user).Select(
		"first_name", "last_name", "mobile_phone", "birth_date", "country",
		"facebook_profile", "instagram_profile", "twitter_profile",
	).Updates(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SetProfilePicture stores the path of an uploaded avatar
func (s *Service) SetProfilePicture(ctx context.Context, userID uint, path string) (*User, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("profile_picture", path).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	return user, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, user.Password); err != nil {
		return ErrWrongCurrentPassword
	}

	hashed, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token and marks the address verified
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.consumeToken(ctx, purposeEmailVerify, token)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email_verified":    true,
			"email_verified_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to verify email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}

	s.logger.WithField("user_id", userID).Info("Email verified")
	return nil
}

// ResendVerification issues a fresh verification email
func (s *Service) ResendVerification(ctx context.Context, userID uint) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	token, err := s.tokens.Issue(ctx, purposeEmailVerify, user.ID, s.config.Security.EmailVerificationExpiry)
	if err != nil {
		return err
	}
	if err := s.mailer.SendEmailVerification(ctx, user.Email, user.GetFullName(), token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// RequestPasswordReset emails a reset link when the address belongs to an active user.
// Unknown addresses are ignored so callers cannot probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, addr string) error {
	var user User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", NormalizeEmail(addr), true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	log := s.logger.WithField("user_id", user.ID)

	token, err := s.tokens.Issue(ctx, purposePasswordReset, user.ID, s.config.Security.PasswordResetTokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to issue password reset token")
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.GetFullName(), token); err != nil {
		log.WithError(err).Error("Failed to send password reset email")
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets a new password
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	// validate before consuming so a weak password does not burn the token
	hashed, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	userID, err := s.consumeToken(ctx, purposePasswordReset, token)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND is_active = ?", userID, true).
		Update("password", hashed)
	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}

	s.logger.WithField("user_id", userID).Info("Password reset")
	return nil
}

// Subscribe adds an address to the newsletter, creating a password-less row when needed
func (s *Service) Subscribe(ctx context.Context, addr string) (*User, error) {
	addr = NormalizeEmail(addr)
	var user User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", addr).First(&user).Error
		switch {
		case err == nil:
			if user.IsSubscribed {
				return ErrAlreadySubscribed
			}
			user.IsSubscribed = true
			return tx.Model(&user).Update("is_subscribed", true).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = User{Email: addr, IsActive: true, IsSubscribed: true}
			if err := tx.Create(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrAlreadySubscribed
				}
				return fmt.Errorf("failed to subscribe: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("failed to look up email: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendNewsletterSubscribed(ctx, user.Email); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to send newsletter confirmation")
	}
	return &user, nil
}

// Unsubscribe removes an address from the newsletter
func (s *Service) Unsubscribe(ctx context.Context, addr string) error {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ? AND is_subscribed = ?", NormalizeEmail(addr), true).
		Update("is_subscribed", false)
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// GetByID loads any user, active or not
func (s *Service) GetByID(ctx context.Context, userID uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *Service) activeUser(ctx context.Context, userID uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := s.passwordManager.HashPassword(password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return "", apperr.Wrap(apperr.ErrInvalid, err)
	}
	return hashed, err
}

func (s *Service) consumeToken(ctx context.Context, purpose, token string) (uint, error) {
	userID, err := s.tokens.Consume(ctx, purpose, token)
	if errors.Is(err, redis.ErrTokenNotFound) {
		return 0, ErrInvalidToken
	}
	return userID, err
}

func (s *Service) sendVerification(ctx context.Context, user *User) {
	log := s.logger.WithField("user_id", user.ID)

	token, err := s.tokens.Issue(ctx, purposeEmailVerify, user.ID, s.config.Security.EmailVerificationExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to issue email verification token")
		return
	}
	if err := s.mailer.SendEmailVerification(ctx, user.Email, user.GetFullName(), token); err != nil {
		log.WithError(err).Error("Failed to send verification email")
	}
}

func (s *Service) authResponse(user *User, keepRefresh string) (*AuthResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	refresh := pair.RefreshToken
	if keepRefresh != "" {
		refresh = keepRefresh
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

func applyProfile(user *User, f *ProfileFields) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&user.FirstName, f.FirstName)
	set(&user.LastName, f.LastName)
	set(&user.MobilePhone, f.MobilePhone)
	set(&user.Country, f.Country)
	set(&user.FacebookProfile, f.FacebookProfile)
	set(&user.InstagramProfile, f.InstagramProfile)
	set(&user.TwitterProfile, f.TwitterProfile)

	if f.BirthDate != nil {
		if *f.BirthDate == "" {
			user.BirthDate = nil
			return nil
		}
		d, err := time.Parse(birthDateLayout, *f.BirthDate)
		if err != nil {
			return apperr.Invalidf("birth_date must use the YYYY-MM-DD format")
		}
		if d.After(time.Now()) {
			return apperr.Invalidf("birth_date cannot be in the future")
		}
		user.BirthDate = &d
	}
	return nil
}
