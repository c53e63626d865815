package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Update is a campus-updates post.
type Update struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Type      string    `gorm:"size:50;not null;index" json:"type"`
	Details   string    `gorm:"type:text;not null" json:"details"`
	Link      string    `gorm:"size:1024" json:"link,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (u *Update) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Trend is a trends/blog post.
type Trend struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Tag         string     `gorm:"size:50;not null;index" json:"tag"`
	Link        string     `gorm:"size:1024" json:"link,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
}

func (t *Trend) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
