package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
)

type CreateOrderRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type CreateOrderResponse struct {
	Order *payment.Order `json:"order"`
}

type PaymentStatusResponse struct {
	Status string `json:"status"`
}

type RetentionRunResponse struct {
	Updates    int64     `json:"updates"`
	Trends     int64     `json:"trends"`
	SystemLogs int64     `json:"systemLogs"`
	Cutoff     time.Time `json:"cutoff"`
}
