package postgres

import (
	"testing"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndSeed(t *testing.T) {
	db := dbtest.New(t)
	m := NewMigration(db, logging.Discard())

	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.CreateIndexes())

	cfg := &config.Config{
		App:      config.AppConfig{SeedAdminEmail: "Admin@Example.com", SeedAdminPass: "Adm!n#Pass2024"},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	require.NoError(t, m.SeedInitialData(cfg))
	require.NoError(t, m.SeedInitialData(cfg), "seeding twice is a no-op")

	var categories, products int64
	require.NoError(t, db.Model(&product.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&product.Product{}).Count(&products).Error)
	assert.EqualValues(t, len(seedCategoryNames), categories)
	assert.EqualValues(t, 6, products)

	var admin user.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.HasPassword())
}

func TestSeedSkipsAdminWithoutPassword(t *testing.T) {
	db := dbtest.New(t)
	m := NewMigration(db, logging.Discard())
	require.NoError(t, m.RunAutoMigrations())

	require.NoError(t, m.SeedInitialData(&config.Config{}))
	var users int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
