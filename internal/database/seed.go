package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/models"
)

// SeedData inserts a small demo dataset when the entity table is empty so a
// fresh install renders something in the grid.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Entity{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	dayAgo := now.Add(-24 * time.Hour)

	seed := []models.Entity{
		{
			Name:        "Sample Entity 1",
			Description: "This is a sample entity for demonstration",
			Status:      models.StatusActive,
			Metadata:    datatypes.JSONMap{"category": "sample", "priority": "high"},
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   "system",
			UpdatedBy:   "system",
		},
		{
			Name:        "Sample Entity 2",
			Description: "Another sample entity",
			Status:      models.StatusActive,
			Metadata:    datatypes.JSONMap{"category": "demo", "priority": "medium"},
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   "system",
			UpdatedBy:   "system",
		},
		{
			Name:        "Archived Entity",
			Description: "This entity is archived",
			Status:      models.StatusArchived,
			Metadata:    datatypes.JSONMap{"category": "old", "priority": "low"},
			CreatedAt:   dayAgo,
			UpdatedAt:   dayAgo,
			CreatedBy:   "system",
			UpdatedBy:   "system",
		},
	}

	return db.Create(&seed).Error
}
