package routes

import (
	"time"

	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/identity/handlers"
	"github.com/clipbook/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	identityHandler *handlers.IdentityHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Cross-service identity read (scheduling service resolves copied ids here)
	api.Get("/identities/:id", identityHandler.Get)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/resend-verification", authHandler.ResendVerification)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Protected
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Admin creates provider-eligible identities
	api.Post("/auth/providers",
		middleware.JWTProtected(cfg), middleware.AdminRequired(cfg),
		authHandler.CreateProvider)
}
