package handlers

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GoogleSync exchanges a provider access token from the OAuth redirect for a
// session token.
func (h *AuthHandler) GoogleSync(c *fiber.Ctx) error {
	var req dto.GoogleSyncRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.GoogleSync(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
