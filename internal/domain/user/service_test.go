package user

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/infrastructure/database/redis"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/email"
	"github.com/eltech/store-backend/internal/pkg/email/emailtest"
	"github.com/eltech/store-backend/internal/pkg/logging"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const strongPassword = "Gr8!Tulip"

type fixture struct {
	svc   *Service
	admin *AdminService
	db    *gorm.DB
	mail  *emailtest.Recorder
	redis *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "Eltech"},
		JWT: config.JWTConfig{
			Secret:               "test-secret-that-is-long-enough-for-hs256",
			AccessTokenExpiry:    time.Hour,
			RefreshTokenExpiry:   24 * time.Hour,
			RefreshTokenRotation: true,
		},
		Security: config.SecurityConfig{
			BcryptCost:               4,
			EmailVerificationExpiry:  24 * time.Hour,
			PasswordResetTokenExpiry: time.Hour,
		},
		Email: config.EmailConfig{BaseURL: "https://shop.test", TemplateDir: t.TempDir()},
	}

	db := dbtest.New(t, &User{})
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	rec := &emailtest.Recorder{}
	mailer, err := email.NewMailer(cfg, rec, logging.Discard())
	require.NoError(t, err)

	return &fixture{
		svc:   NewService(db, cfg, redis.NewTokenStore(rc), mailer, logging.Discard()),
		admin: NewAdminService(db, logging.Discard()),
		db:    db,
		mail:  rec,
		redis: mr,
	}
}

// tokenFromRedis returns the only key with the given prefix, minus the prefix
func (f *fixture) tokenFromRedis(t *testing.T, purpose string) string {
	t.Helper()
	for _, k := range f.redis.Keys() {
		if len(k) > len(purpose)+1 && k[:len(purpose)+1] == purpose+":" {
			return k[len(purpose)+1:]
		}
	}
	t.Fatalf("no %s token in redis", purpose)
	return ""
}

func str(s string) *string { return &s }

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{
		Email:         "  Ada@Example.com ",
		Password:      strongPassword,
		ProfileFields: ProfileFields{FirstName: str("Ada"), BirthDate: str("1990-12-10")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.False(t, resp.User.EmailVerified)
	require.NotNil(t, resp.User.BirthDate)

	sent := f.mail.SentOfType(email.EmailTypeEmailVerification)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sent[0].To)

	_, err = f.svc.Register(ctx, &RegisterRequest{Email: "ada@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := f.svc.Login(ctx, &LoginRequest{Email: "ADA@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.NotNil(t, login.User.LastLoginAt)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "Wr0ng!Pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), &RegisterRequest{Email: "a@example.com", Password: "password"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.Register(context.Background(), &RegisterRequest{Email: "a@example.com", Password: strongPassword, ConfirmPassword: "other"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegisterUpgradesNewsletterRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "reader@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "reader@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resp.User.ID)
	assert.True(t, resp.User.IsSubscribed)

	var count int64
	f.db.Model(&User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&User{}).Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	f.svc.config.JWT.RefreshTokenRotation = false
	kept, err := f.svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.RefreshToken, kept.RefreshToken)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)

	token := f.tokenFromRedis(t, "email_verify")
	require.NoError(t, f.svc.VerifyEmail(ctx, token))

	u, err := f.svc.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.NotNil(t, u.EmailVerifiedAt)

	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, token), ErrInvalidToken)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "made-up"), ErrInvalidToken)
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, resp.User.ID), ErrAlreadyVerified)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.ResendVerification(ctx, resp.User.ID))
	assert.Len(t, f.mail.SentOfType(email.EmailTypeEmailVerification), 2)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, f.mail.SentOfType(email.EmailTypePasswordReset))

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "A@example.com"))
	require.Len(t, f.mail.SentOfType(email.EmailTypePasswordReset), 1)

	token := f.tokenFromRedis(t, "password_reset")

	err = f.svc.ConfirmPasswordReset(ctx, token, "weak")
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, token, "N3w!Orchid"))
	assert.ErrorIs(t, f.svc.ConfirmPasswordReset(ctx, token, "N3w!Orchid"), ErrInvalidToken)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "N3w!Orchid"})
	assert.NoError(t, err)

	f.redis.FastForward(2 * time.Hour)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "a@example.com"))
	expired := f.tokenFromRedis(t, "password_reset")
	f.redis.FastForward(2 * time.Hour)
	assert.ErrorIs(t, f.svc.ConfirmPasswordReset(ctx, expired, "Th1rd!Lily"), ErrInvalidToken)
}

func TestChangePasswordAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)
	id := resp.User.ID

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, id, "Wr0ng!Pass", "N3w!Orchid"), ErrWrongCurrentPassword)
	require.NoError(t, f.svc.ChangePassword(ctx, id, strongPassword, "N3w!Orchid"))

	u, err := f.svc.UpdateProfile(ctx, id, &ProfileFields{FirstName: str("Ada"), Country: str("Georgia")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)

	reloaded, err := f.svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Georgia", reloaded.Country)
	assert.False(t, reloaded.IsAdmin)
	assert.NotEmpty(t, reloaded.Password)

	_, err = f.svc.UpdateProfile(ctx, id, &ProfileFields{BirthDate: str("10/12/1990")})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Subscribe(ctx, "News@Example.com")
	require.NoError(t, err)
	assert.True(t, u.IsSubscribed)
	assert.True(t, u.IsActive)
	assert.Equal(t, "news@example.com", u.Email)
	assert.Len(t, f.mail.SentOfType(email.EmailTypeNewsletterSubscribed), 1)

	_, err = f.svc.Subscribe(ctx, "news@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.EqualError(t, err, "already subscribed")

	require.NoError(t, f.svc.Unsubscribe(ctx, "news@example.com"))
	assert.ErrorIs(t, f.svc.Unsubscribe(ctx, "news@example.com"), ErrNotSubscribed)

	again, err := f.svc.Subscribe(ctx, "news@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	registered, err := f.svc.Register(ctx, &RegisterRequest{Email: "member@example.com", Password: strongPassword})
	require.NoError(t, err)
	sub, err := f.svc.Subscribe(ctx, "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, sub.ID)
}

func TestEmailClaimedConcurrentlyIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dbtest.BeforeNextInsert(t, f.db, "users", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&User{Email: "first@example.com", Password: "x", IsActive: true}).Error)
	})
	_, err := f.svc.Register(ctx, &RegisterRequest{Email: "first@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrEmailTaken)

	dbtest.BeforeNextInsert(t, f.db, "users", func(tx *gorm.DB) {
		require.NoError(t, tx.Create(&User{Email: "reader@example.com", IsActive: true, IsSubscribed: true}).Error)
	})
	_, err = f.svc.Subscribe(ctx, "reader@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.Empty(t, f.mail.SentOfType(email.EmailTypeNewsletterSubscribed))
}

func TestAdminUserManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: strongPassword})
	require.NoError(t, err)
	_, err = f.svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)

	subscribed := true
	users, meta, err := f.admin.ListUsers(ctx, &UserListRequest{IsSubscribed: &subscribed})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "reader@example.com", users[0].Email)
	assert.Equal(t, int64(1), meta.Total)

	users, _, err = f.admin.ListUsers(ctx, &UserListRequest{Search: "A@EXAMPLE"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.admin.UpdateUserStatus(ctx, a.User.ID, a.User.ID, false)
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)

	_, err = f.admin.UpdateUserStatus(ctx, 999, a.User.ID, false)
	require.NoError(t, err)
	_, err = f.svc.GetProfile(ctx, a.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.admin.UpdateUserStatus(ctx, 999, 12345, true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
