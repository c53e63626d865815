package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDKey = "user_id"

// JWTProtected verifies the bearer session token and stores the caller's
// user id in c.Locals("user_id").
func JWTProtected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			sub, err := session.Subject(token)
			if err != nil {
				return apperror.InvalidToken("Invalid token")
			}
			c.Locals(userIDKey, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case c.Get(fiber.HeaderAuthorization) == "":
				return apperror.Unauthenticated("Missing authorization token")
			case errors.Is(err, jwt.ErrTokenExpired):
				return apperror.TokenExpired("Token expired")
			default:
				return apperror.InvalidToken("Invalid token")
			}
		},
	})
}

// CurrentUserID returns the id JWTProtected stored for this request.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	sub, ok := c.Locals(userIDKey).(string)
	if !ok || sub == "" {
		return uuid.Nil, apperror.Unauthenticated("Missing authorization token")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperror.InvalidToken("Invalid token")
	}
	return id, nil
}
