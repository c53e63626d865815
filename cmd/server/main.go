package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/config"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/database"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/events"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/identity"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/logging"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/server"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/session"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/storage"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/supabase"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)
	slog.SetDefault(slog.New(stdout))

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Identity provider and object storage
	var (
		idp       identity.Provider
		store     storage.ObjectStore
		uploadDir string
	)
	if cfg.SupabaseEnabled() {
		client, err := supabase.New(supabase.Config{
			ProjectURL:     cfg.SupabaseURL,
			AnonKey:        cfg.SupabaseAnonKey,
			ServiceRoleKey: cfg.SupabaseServiceRoleKey,
			Timeout:        cfg.ProviderTimeout,
		})
		if err != nil {
			slog.Error("supabase client init failed", "error", err)
			os.Exit(1)
		}
		idp = identity.NewSupabaseProvider(client)
		store = storage.NewSupabaseStore(client, cfg.SupabaseBucket)
		slog.Info("using supabase for identity and storage", "bucket", cfg.SupabaseBucket)
	} else {
		idp = identity.NewLocalProvider(db)
		disk := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
		store = disk
		uploadDir = disk.Dir()
		slog.Warn("supabase not configured, using local credentials and disk uploads", "dir", uploadDir)
	}

	// Payments
	var gateway payment.Gateway = payment.Disabled{}
	if cfg.PaymentsEnabled() {
		gateway = payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.ProviderTimeout)
	} else {
		slog.Warn("razorpay not configured, order creation disabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("amqp unavailable, payment events disabled", "error", err)
		} else {
			publisher = p
		}
	}

	// Optional Redis for shared rate-limit state
	redisClient := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)

	// Services
	issuer := session.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry).WithIssuer(cfg.JWTIssuer)
	admins := services.NewAdminResolver(db, cfg.AdminIDs())
	retention := jobs.NewRetentionJob(db, slog.Default(), collector)
	retention.RetentionDays = cfg.RetentionDays

	deps := server.Deps{
		DB:        db,
		Auth:      services.NewAuthService(db, issuer, idp, collector),
		Profiles:  services.NewProfileService(db, store),
		Directory: services.NewDirectoryService(db),
		Updates:   services.NewUpdateService(db, cfg.UpdateDeletePolicy, admins),
		Trends:    services.NewTrendService(db),
		Payments:  services.NewPaymentService(db, gateway, publisher, collector, cfg.PaymentCurrency),
		Admins:    admins,
		Retention: retention,
		Metrics:   collector,
		Gatherer:  reg,
		Redis:     redisClient,
		UploadDir: uploadDir,
		AccessLog: true,
	}

	scheduler, err := jobs.StartScheduler(cfg.RetentionSchedule, retention, slog.Default())
	if err != nil {
		slog.Error("retention scheduler failed to start", "schedule", cfg.RetentionSchedule, "error", err)
		os.Exit(1)
	}

	app := server.New(cfg, deps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	scheduler.Stop()
	shutdown(db, dbLogHandler, publisher, deps)

	slog.Info("server stopped")
}

func shutdown(db *gorm.DB, dbLog *logging.DBHandler, publisher events.Publisher, deps server.Deps) {
	if err := publisher.Close(); err != nil {
		slog.Error("event publisher close error", "error", err)
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	dbLog.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}
}
