package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credential holds password hashes for the built-in identity provider.
// Rows are never read outside internal/identity.
type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	FullName     string    `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Credential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
