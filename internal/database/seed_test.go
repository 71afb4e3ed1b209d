package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/models"
)

func openSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestMigrateAndSeedCreatesDemoEntities(t *testing.T) {
	db := openSeedTestDB(t)

	require.NoError(t, MigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.Entity{}).Count(&count).Error)
	require.Equal(t, int64(3), count)

	var archived models.Entity
	require.NoError(t, db.First(&archived, "status = ?", models.StatusArchived).Error)
	require.Equal(t, "Archived Entity", archived.Name)
}

func TestMigrateAndSeedIsIdempotent(t *testing.T) {
	db := openSeedTestDB(t)

	require.NoError(t, MigrateAndSeed(db))
	require.NoError(t, MigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.Entity{}).Count(&count).Error)
	require.Equal(t, int64(3), count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "postgres"})
	require.Error(t, err)
}
