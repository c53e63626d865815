package ratelimit

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// New limits each client IP to max requests per minute. A max of zero or
// less disables limiting. storage may be nil for in-memory state.
func New(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return apperror.TooManyRequests("Too many requests, please try again later")
		},
	})
}
