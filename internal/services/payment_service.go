package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/events"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	db        *gorm.DB
	gateway   payment.Gateway
	publisher events.Publisher
	metrics   *metrics.Collector
	currency  string
}

func NewPaymentService(db *gorm.DB, gateway payment.Gateway, publisher events.Publisher, m *metrics.Collector, currency string) *PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if currency == "" {
		currency = "INR"
	}
	return &PaymentService{db: db, gateway: gateway, publisher: publisher, metrics: m, currency: currency}
}

// CreateOrder opens a provider order for amount (in major units) and records
// it as a created payment.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uuid.UUID, req *dto.CreateOrderRequest) (*payment.Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	minor := int64(math.Round(req.Amount * 100))
	if minor <= 0 {
		return nil, apperror.Validation("amount", "amount must be greater than 0")
	}
	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]

	order, err := s.gateway.CreateOrder(ctx, minor, s.currency, receipt)
	if err != nil {
		s.metrics.RecordPaymentOrder(false)
		return nil, gatewayError(err)
	}

	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}
	row := models.Payment{
		UserID:   userID,
		Amount:   order.Amount,
		Currency: currency,
		OrderID:  order.ID,
		Status:   models.PaymentCreated,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.metrics.RecordPaymentOrder(false)
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	s.metrics.RecordPaymentOrder(true)

	event := events.PaymentOrderCreated{
		Type:       events.PaymentOrderCreatedType,
		UserID:     userID.String(),
		OrderID:    order.ID,
		Amount:     order.Amount,
		Currency:   currency,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("payment event publish failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// Status reports the caller's most recent payment status, or unpaid.
func (s *PaymentService) Status(ctx context.Context, userID uuid.UUID) (string, error) {
	var latest models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PaymentUnpaid, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load payment status: %w", err)
	}
	return latest.Status, nil
}

func gatewayError(err error) error {
	if errors.Is(err, payment.ErrNotConfigured) {
		return apperror.Upstream("Payments are not configured", err)
	}
	var pErr *payment.ProviderError
	if errors.As(err, &pErr) && pErr.Description != "" {
		return apperror.Upstream(pErr.Description, err)
	}
	return apperror.Upstream("Failed to create payment order", err)
}
