package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/http/handlers"
	"github.com/helpdesk-central/ticket-hub/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Intake           *handlers.IntakeHandler
	Tickets          *handlers.TicketsHandler
	Auth             *handlers.AuthHandler
	Agents           *handlers.AgentsHandler
	Platforms        *handlers.PlatformsHandler
	APIKeyMiddleware *auth.APIKeyMiddleware
	StaffMiddleware  *auth.StaffMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Platform-facing intake, authenticated by API key.
	intake := app.Group("/api/tickets", cfg.APIKeyMiddleware.Handle)
	intake.Post("/submit", cfg.Intake.Submit)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authProtected := authGroup.Group("", cfg.StaffMiddleware.Handle, auth.RequireStaff())
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	// Staff console, authenticated by bearer token.
	staff := app.Group("/staff", cfg.StaffMiddleware.Handle, auth.RequireStaff())
	staff.Get("/tickets", cfg.Tickets.List)
	staff.Get("/tickets/:id", cfg.Tickets.Get)
	staff.Get("/tickets/:id/status-options", cfg.Tickets.StatusOptions)
	staff.Patch("/tickets/:id", cfg.Tickets.Update)
	staff.Delete("/tickets/:id", auth.RequirePrivileged(), cfg.Tickets.Delete)
	staff.Get("/tickets/:id/history", auth.RequirePrivileged(), cfg.Tickets.History)

	// Administration.
	admin := app.Group("/admin", cfg.StaffMiddleware.Handle, auth.RequirePrivileged())
	admin.Get("/agents", cfg.Agents.List)
	admin.Post("/agents", cfg.Agents.Create)
	admin.Delete("/agents/:id", cfg.Agents.Delete)
	admin.Get("/platforms", cfg.Platforms.List)
	admin.Post("/platforms", cfg.Platforms.Create)
	admin.Delete("/platforms/:id", cfg.Platforms.Delete)
}
