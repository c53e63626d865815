package routes

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Profile *handlers.ProfileHandler
	Feed    *handlers.FeedHandler
	Payment *handlers.PaymentHandler
	Admin   *handlers.AdminHandler
}

type Options struct {
	JWTSecret string
	Admins    *services.AdminResolver

	RateLimit     int
	AuthRateLimit int
	// Nil storages keep limiter state in memory.
	APILimitStorage  fiber.Storage
	AuthLimitStorage fiber.Storage
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api")
	api.Use(ratelimit.New(opts.RateLimit, opts.APILimitStorage))

	api.Get("/health", h.Health.Check)

	protected := middleware.JWTProtected(opts.JWTSecret)

	// Auth is public with a stricter limit
	auth := api.Group("/auth")
	auth.Use(ratelimit.New(opts.AuthRateLimit, opts.AuthLimitStorage))
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/google/sync", h.Auth.GoogleSync)

	api.Get("/profile/me", protected, h.Profile.Me)
	api.Post("/profile/update", protected, h.Profile.Update)
	api.Get("/students/profiles", h.Profile.Directory)

	api.Get("/updates", h.Feed.ListUpdates)
	api.Post("/updates/create", protected, h.Feed.CreateUpdate)
	api.Delete("/updates/:id", protected, h.Feed.DeleteUpdate)

	api.Get("/trends", h.Feed.ListTrends)
	api.Post("/trends/create", protected, h.Feed.CreateTrend)

	payment := api.Group("/payment", protected)
	payment.Post("/create-order", h.Payment.CreateOrder)
	payment.Get("/status", h.Payment.Status)
	payment.Post("/verify", h.Payment.Verify)

	admin := api.Group("/admin", protected, middleware.AdminRequired(opts.Admins))
	admin.Post("/retention/run", h.Admin.RunRetention)
}
