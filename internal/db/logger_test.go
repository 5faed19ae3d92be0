package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	l := NewLogger(log, logger.Warn)
	query := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries(), "missing rows are not logged")

	l.Trace(context.Background(), time.Now(), query, errors.New("driver: bad connection"))
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Equal(t, "SELECT 1", hook.LastEntry().Data["sql"])
	}

	hook.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, "slow query", hook.LastEntry().Message)
	}

	hook.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), query, errors.New("ignored"))
	assert.Empty(t, hook.AllEntries())
}
