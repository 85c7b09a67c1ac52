package repositories

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sevapay.backend/internal/infrastructure/models"
)

var testDBSeq atomic.Int64

// setupTestDB opens an isolated in-memory sqlite database with the full
// schema. Each test gets its own named database so pooled connections share
// state within a test but never across tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Partner{},
		&models.PosMachine{},
		&models.PosDeviceMapping{},
		&models.AdminUser{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.BbpsTransaction{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}
