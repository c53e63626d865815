package middleware

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired must run after JWTProtected.
func AdminRequired(admins *services.AdminResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}
		ok, err := admins.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Forbidden("Admin access required")
		}
		return c.Next()
	}
}
