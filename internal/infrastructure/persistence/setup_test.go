package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmflow/backend/internal/infrastructure/persistence/models"
)

func migrateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.AutoMigrate(
		&models.TierModel{},
		&models.BillingAccountModel{},
		&models.SubscriptionModel{},
		&models.UserModel{},
		&models.WorkspaceModel{},
		&models.WorkspaceMemberModel{},
		&models.UsageCounterModel{},
	)
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	migrateAll(t, db)
	return db
}

// setupFileTestDB creates a file-backed database restricted to a single
// connection, so concurrent repository calls exercise real statement
// serialization instead of failing on SQLite's writer lock.
func setupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	migrateAll(t, db)
	return db
}
