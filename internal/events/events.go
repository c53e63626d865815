// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"time"
)

const PaymentOrderCreatedType = "payment.order_created"

type PaymentOrderCreated struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers an event. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, any) error { return nil }
func (NopPublisher) Close() error                       { return nil }
