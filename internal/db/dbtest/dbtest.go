// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	"wallet_api/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory sqlite database closed when t ends
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.Options(log))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// Every new connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}
