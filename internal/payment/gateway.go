// Package payment talks to the payment provider's Orders API.
package payment

import (
	"context"
	"errors"
)

// Order is the provider's order descriptor, returned to the client as-is so
// it can open the checkout widget.
type Order struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
}

var ErrNotConfigured = errors.New("payment provider not configured")

// Disabled is the Gateway used when no provider keys are set.
type Disabled struct{}

func (Disabled) CreateOrder(context.Context, int64, string, string) (*Order, error) {
	return nil, ErrNotConfigured
}
