// Package server assembles the Fiber application: global middleware, routes
// and the metrics endpoint.
package server

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/config"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/routes"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BodyLimit covers a profile update carrying three attachments.
const BodyLimit = 16 * 1024 * 1024

type Deps struct {
	DB        *gorm.DB
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Directory *services.DirectoryService
	Updates   *services.UpdateService
	Trends    *services.TrendService
	Payments  *services.PaymentService
	Admins    *services.AdminResolver
	Retention jobs.Runner

	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	// Redis backs the rate limiters when set.
	Redis *redis.Client
	// UploadDir is served under /uploads when attachments are stored on disk.
	UploadDir string
	// AccessLog disables the per-request log line when false.
	AccessLog bool
}

func New(cfg *config.Config, d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "campusconnect",
		BodyLimit:    BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.SecurityHeaders())
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}

	if d.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(d.Gatherer))
	}
	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir)
	}

	opts := routes.Options{
		JWTSecret:     cfg.JWTSecret,
		Admins:        d.Admins,
		RateLimit:     cfg.RateLimitPerMinute,
		AuthRateLimit: cfg.AuthRateLimitPerMinute,
	}
	if d.Redis != nil {
		opts.APILimitStorage = ratelimit.NewRedisStorage(d.Redis, "campusconnect:limit:api:")
		opts.AuthLimitStorage = ratelimit.NewRedisStorage(d.Redis, "campusconnect:limit:auth:")
	}

	routes.Setup(app, routes.Handlers{
		Auth:    handlers.NewAuthHandler(d.Auth),
		Health:  handlers.NewHealthHandler(d.DB),
		Profile: handlers.NewProfileHandler(d.Profiles, d.Directory),
		Feed:    handlers.NewFeedHandler(d.Updates, d.Trends),
		Payment: handlers.NewPaymentHandler(d.Payments),
		Admin:   handlers.NewAdminHandler(d.Retention),
	}, opts)

	return app
}
