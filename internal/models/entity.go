package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entity statuses. Unknown values are rejected at the route boundary.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Entity is the single domain record managed by the CRUD facade.
// JSON field names are camelCase to match the dashboard grid contract.
type Entity struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `json:"description"`
	Status      string            `gorm:"not null;default:active" json:"status"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
