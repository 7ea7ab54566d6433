package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/swiftlogistics/driver-service/internal/api/http/handlers"
	"github.com/swiftlogistics/driver-service/internal/auth"
	"github.com/swiftlogistics/driver-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Drivers        *handlers.DriversHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	drivers := app.Group("/api/drivers")
	drivers.Post("/register", cfg.Drivers.Register)
	drivers.Get("/health", cfg.Drivers.ServiceHealth)

	requireRead := cfg.AuthMiddleware.RequireScope(auth.ScopeDriversRead)
	drivers.Get("/", cfg.AuthMiddleware.Handle, requireRead, cfg.Drivers.Lookup)
	drivers.Get("/:driverId", cfg.AuthMiddleware.Handle, requireRead, cfg.Drivers.Get)
}
