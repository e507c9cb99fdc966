package routes

import (
	"time"

	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/middleware"
	"github.com/clipbook/backend/internal/scheduling/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	providerHandler *handlers.ProviderHandler,
	bookingHandler *handlers.BookingHandler,
	serviceHandler *handlers.ServiceHandler,
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

	// Provisioning intake from the identity service
	api.Post("/providers", providerHandler.Provision)

	// Provider directory — public reads
	api.Get("/providers", providerHandler.List)
	api.Get("/providers/:id", providerHandler.Get)

	// Catalog — public reads
	api.Get("/services", serviceHandler.List)
	api.Get("/services/:id", serviceHandler.Get)

	jwt := middleware.JWTProtected(cfg)
	admin := middleware.AdminRequired(cfg)

	// Bookings. Static segments are registered before the :id routes so
	// "my" and "provider" never match as a booking id.
	bookings := api.Group("/bookings", jwt)
	bookings.Get("/my", bookingHandler.My)
	bookings.Get("/my/upcoming", bookingHandler.MyUpcoming)
	bookings.Get("/provider", bookingHandler.Provider)
	bookings.Get("/provider/upcoming", bookingHandler.ProviderUpcoming)
	bookings.Post("/", bookingHandler.Create)
	bookings.Get("/:id", bookingHandler.Get)
	bookings.Patch("/:id/confirm", bookingHandler.Confirm)
	bookings.Patch("/:id/complete", bookingHandler.Complete)
	bookings.Patch("/:id/cancel", bookingHandler.Cancel)
	bookings.Delete("/:id", bookingHandler.Delete)

	// Admin
	api.Get("/admin/bookings", jwt, admin, bookingHandler.All)
	api.Get("/admin/providers", jwt, admin, providerHandler.ListAll)
	api.Patch("/admin/providers/:id", jwt, admin, providerHandler.Update)
	api.Delete("/admin/providers/:id", jwt, admin, providerHandler.Deactivate)
	api.Post("/admin/services", jwt, admin, serviceHandler.Create)
	api.Delete("/admin/services/:id", jwt, admin, serviceHandler.Deactivate)
}
