package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mabar/app/models/place"
	"mabar/app/models/spin"
	"mabar/app/models/voucher"
)

// newTestDB 内存 SQLite，单连接串行执行，并发用例行为可控
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&place.Place{},
		&voucher.Template{},
		&voucher.Voucher{},
		&spin.DailySpin{},
		&spin.History{},
	))
	return db
}
