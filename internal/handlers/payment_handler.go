package handlers

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	order, err := h.payments.CreateOrder(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateOrderResponse{Order: order})
}

func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	status, err := h.payments.Status(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.PaymentStatusResponse{Status: status})
}

// Verify is routed so clients get a definite answer; signature checking is
// not implemented.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	return apperror.NotImplemented("Payment verification is not implemented")
}
