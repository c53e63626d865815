package handlers

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FeedHandler struct {
	updates *services.UpdateService
	trends  *services.TrendService
}

func NewFeedHandler(updates *services.UpdateService, trends *services.TrendService) *FeedHandler {
	return &FeedHandler{updates: updates, trends: trends}
}

func (h *FeedHandler) CreateUpdate(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateUpdateRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	update, err := h.updates.Create(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UpdateResponse{Message: "Update created successfully", Update: update})
}

func (h *FeedHandler) ListUpdates(c *fiber.Ctx) error {
	q, err := feedQuery(c)
	if err != nil {
		return err
	}

	updates, err := h.updates.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(updates)
}

func (h *FeedHandler) DeleteUpdate(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.Validation("id", "Invalid update id")
	}

	if err := h.updates.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Update deleted successfully"})
}

func (h *FeedHandler) CreateTrend(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateTrendRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	trend, err := h.trends.Create(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TrendResponse{Message: "Trend created successfully", Trend: trend})
}

func (h *FeedHandler) ListTrends(c *fiber.Ctx) error {
	q, err := feedQuery(c)
	if err != nil {
		return err
	}

	trends, err := h.trends.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(trends)
}

// feedQuery returns nil when neither limit nor offset was given.
func feedQuery(c *fiber.Ctx) (*dto.FeedQuery, error) {
	if c.Query("limit") == "" && c.Query("offset") == "" {
		return nil, nil
	}
	var q dto.FeedQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, apperror.Validation("", "Invalid query parameters")
	}
	return &q, nil
}
