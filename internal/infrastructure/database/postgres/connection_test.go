package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := NewGormLogger(base, gormlogger.Warn, 100*time.Millisecond)
	query := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Equal(t, "SELECT 1", hook.LastEntry().Data["sql"])
	}
	hook.Reset()

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries(), "record not found is not logged")

	l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	}
	hook.Reset()

	l.Trace(context.Background(), time.Now(), query, nil)
	assert.Empty(t, hook.AllEntries(), "fast queries are silent at warn level")

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), query, errors.New("boom"))
	assert.Empty(t, hook.AllEntries())
}
