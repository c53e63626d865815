package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"

	// PaymentUnpaid is reported for users without any payment row.
	PaymentUnpaid = "unpaid"
)

// Payment records one checkout attempt. Amount is in the currency's minor unit.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Currency  string    `gorm:"size:3;not null" json:"currency"`
	OrderID   string    `gorm:"size:64;not null;uniqueIndex" json:"orderId"`
	Status    string    `gorm:"size:20;not null;default:'created';index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
