// Package dbtest opens throwaway in-memory databases for service tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var hooks atomic.Int64

func hookName(kind, table string) string {
	return fmt.Sprintf("dbtest:%s:%s:%d", kind, table, hooks.Add(1))
}

// New opens an in-memory SQLite database and migrates models into it.
// The pool holds a single connection so every query sees the same database.
func New(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models...))
	return db
}

// BeforeNextInsert runs fn once, right before the next INSERT into table is
// written. fn receives a session on the same connection and transaction, so
// rows it writes look like they came from a concurrent request that won.
func BeforeNextInsert(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB)) {
	t.Helper()

	var fired atomic.Bool
	err := db.Callback().Create().
		After("gorm:begin_transaction").
		Before("gorm:create").
		Register(hookName("before_insert", table), func(tx *gorm.DB) {
			if tx.Statement.Table != table || !fired.CompareAndSwap(false, true) {
				return
			}
			fn(tx.Session(&gorm.Session{NewDB: true}))
		})
	require.NoError(t, err)
}

// BeforeNextUpdate is BeforeNextInsert for the next UPDATE of table.
func BeforeNextUpdate(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB)) {
	t.Helper()

	var fired atomic.Bool
	err := db.Callback().Update().
		After("gorm:begin_transaction").
		Before("gorm:update").
		Register(hookName("before_update", table), func(tx *gorm.DB) {
			if tx.Statement.Table != table || !fired.CompareAndSwap(false, true) {
				return
			}
			fn(tx.Session(&gorm.Session{NewDB: true}))
		})
	require.NoError(t, err)
}
