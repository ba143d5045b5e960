package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nuvix-market/nuvix-suite/internal/api/http/handlers"
	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
)

// RouteConfig bundles dependencies for route registration. The /api group
// is only mounted when Auth and AuthMiddleware are set.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Alive)
	app.Get("/health", cfg.Health.Alive)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	if cfg.Auth == nil || cfg.AuthMiddleware == nil {
		return
	}
	api := app.Group("/api")
	api.Post("/auth/token", cfg.Auth.Token)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/leaderboard", auth.RequireTier(domain.TierHighStaff), cfg.Staff.Leaderboard)
	protected.Get("/staff/:id/stats", auth.RequireTier(domain.TierTrialSupport), cfg.Staff.Stats)
	protected.Get("/tickets", auth.RequireTier(domain.TierTrialSupport), cfg.Tickets.List)
	protected.Get("/reviews", auth.RequireTier(domain.TierHighStaff), cfg.Tickets.Reviews)
	protected.Get("/blacklist", auth.RequireTier(domain.TierTrialSupport), cfg.Tickets.Blacklist)
}
