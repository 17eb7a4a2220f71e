package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/config"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/database"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/handlers"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/logging"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/middleware"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/ratelimit"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/routes"
	"github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.ClerkJWKSURL == "" {
		slog.Error("CLERK_JWKS_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.ClerkWebhookSecret == "" {
		slog.Warn("CLERK_WEBHOOK_SECRET is not set; identity webhooks will be rejected")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		slog.Warn("Razorpay credentials are not set; order creation is disabled")
	}
	if cfg.RazorpayWebhookSecret == "" {
		slog.Warn("RAZORPAY_WEBHOOK_SECRET is not set; payment webhooks will be rejected")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	subscriptionService := services.NewSubscriptionService(database.DB, cfg)
	documentService := services.NewDocumentService(database.DB)
	userService := services.NewUserService(database.DB, subscriptionService)
	processorClient := services.NewProcessorClient(cfg)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	documentHandler := handlers.NewDocumentHandler(documentService, processorClient, cfg.ProcessorCallbackToken)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	webhookHandler := handlers.NewWebhookHandler(userService, subscriptionService, cfg.ClerkWebhookSecret, cfg.RazorpayWebhookSecret)

	// Rate limiter (process-local, swept every minute)
	limiter := ratelimit.New(time.Minute)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(middleware.BuildPhase(cfg))

	// Routes
	routes.Setup(app, cfg, limiter, healthHandler, documentHandler, subscriptionHandler, webhookHandler)

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

	close(cleanupDone)
	limiter.Stop()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
