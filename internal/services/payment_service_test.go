package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/events"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e any) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestPaymentService_CreateOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	gw := &fakeGateway{}
	pub := &recordingPublisher{}
	svc := NewPaymentService(db, gw, pub, nil, "INR")
	userID := uuid.New()

	order, err := svc.CreateOrder(context.Background(), userID, &dto.CreateOrderRequest{Amount: 499.99})
	require.NoError(t, err)
	assert.Equal(t, int64(49999), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Regexp(t, `^rcpt_[0-9a-f]{20}$`, order.Receipt)

	var row models.Payment
	require.NoError(t, db.First(&row, "order_id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentCreated, row.Status)
	assert.Equal(t, userID, row.UserID)

	require.Len(t, pub.events, 1)
	evt := pub.events[0].(events.PaymentOrderCreated)
	assert.Equal(t, order.ID, evt.OrderID)
}

func TestPaymentService_PublishFailureIsNotFatal(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, &recordingPublisher{err: errors.New("broker down")}, nil, "INR")

	_, err := svc.CreateOrder(context.Background(), uuid.New(), &dto.CreateOrderRequest{Amount: 1})
	assert.NoError(t, err)
}

func TestPaymentService_CreateOrderErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	svc := NewPaymentService(db, &fakeGateway{}, nil, nil, "")
	_, err := svc.CreateOrder(ctx, uuid.New(), &dto.CreateOrderRequest{Amount: 0})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.CreateOrder(ctx, uuid.New(), &dto.CreateOrderRequest{Amount: 0.001})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	svc = NewPaymentService(db, payment.Disabled{}, nil, nil, "INR")
	_, err = svc.CreateOrder(ctx, uuid.New(), &dto.CreateOrderRequest{Amount: 10})
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.ErrorIs(t, err, payment.ErrNotConfigured)

	gw := &fakeGateway{err: &payment.ProviderError{StatusCode: 400, Code: "BAD_REQUEST_ERROR", Description: "Currency not supported"}}
	svc = NewPaymentService(db, gw, nil, nil, "INR")
	_, err = svc.CreateOrder(ctx, uuid.New(), &dto.CreateOrderRequest{Amount: 10})
	assert.Equal(t, "Currency not supported", apperror.Message(err))

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPaymentService_Status(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, nil, nil, "INR")
	ctx := context.Background()
	userID := uuid.New()

	status, err := svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, status)

	_, err = svc.CreateOrder(ctx, userID, &dto.CreateOrderRequest{Amount: 99})
	require.NoError(t, err)

	status, err = svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreated, status)
}
