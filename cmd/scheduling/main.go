package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/database"
	"github.com/clipbook/backend/internal/logging"
	"github.com/clipbook/backend/internal/middleware"
	"github.com/clipbook/backend/internal/notify"
	"github.com/clipbook/backend/internal/scheduling/handlers"
	"github.com/clipbook/backend/internal/scheduling/identity"
	"github.com/clipbook/backend/internal/scheduling/repository"
	"github.com/clipbook/backend/internal/scheduling/routes"
	"github.com/clipbook/backend/internal/scheduling/seed"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup("scheduling")

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg.SchedulingDSN())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := repository.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, "scheduling")
	slog.SetDefault(slog.New(logging.Fanout(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	if err := seed.EnsureCatalog(db); err != nil {
		slog.Error("catalog seed failed", "error", err)
		os.Exit(1)
	}

	// Outbound notifications (console fallback when AMQP is not configured)
	notifier, err := notify.FromURL(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		slog.Error("notifier init failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	providerRepo := repository.NewProviderRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	refRepo := repository.NewIdentityRefRepo(db)

	// Services
	identityClient := identity.NewClient(cfg.IdentityURL, refRepo)
	providerService := services.NewProviderService(providerRepo, identityClient)
	bookingService := services.NewBookingService(bookingRepo, providerRepo, catalogRepo, notifier)
	catalogService := services.NewCatalogService(catalogRepo)

	// Handlers
	providerHandler := handlers.NewProviderHandler(providerService)
	bookingHandler := handlers.NewBookingHandler(bookingService, providerService)
	serviceHandler := handlers.NewServiceHandler(catalogService)
	healthHandler := handlers.NewHealthHandler(db)

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
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

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
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, providerHandler, bookingHandler, serviceHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("scheduling service starting", "port", cfg.SchedulingPort)
		if err := app.Listen(":" + cfg.SchedulingPort); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down scheduling service...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	_ = notifier.Close()

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("scheduling service stopped")
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
