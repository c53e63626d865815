package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the local mirror of an identity-provider account.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID *string   `gorm:"size:255;uniqueIndex" json:"-"`
	FullName   string    `gorm:"size:255;not null" json:"fullName"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Provider   string    `gorm:"size:20;not null;default:'local'" json:"provider"`
	Role       string    `gorm:"size:20;not null;default:'user'" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
