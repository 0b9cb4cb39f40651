package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Assets         *handlers.AssetsHandler
	Chat           *handlers.ChatHandler
	Hub            *realtime.Hub
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assignee", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	assets := app.Group("/assets", cfg.AuthMiddleware.Handle)
	assets.Get("", cfg.Assets.List)
	assets.Get("/indicators", cfg.Assets.Indicators)
	assets.Get("/:id", cfg.Assets.Get)
	assets.Post("", cfg.Assets.Create)
	assets.Patch("/:id", cfg.Assets.Update)
	assets.Delete("/:id", cfg.Assets.Delete)

	app.Post("/chat", cfg.AuthMiddleware.Handle, cfg.Chat.Forward)

	app.Use("/ws", cfg.AuthMiddleware.Handle, markRealtimeStaff, realtime.Upgrade)
	app.Get("/ws", cfg.Hub.Handler())
}

// markRealtimeStaff carries the subscriber's staff flag across the
// websocket upgrade so the hub can filter staff-only events.
func markRealtimeStaff(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		c.Locals(realtime.StaffLocal, principal.Role().IsStaff())
	}
	return c.Next()
}
