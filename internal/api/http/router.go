package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-auth/internal/api/http/handlers"
	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Members    *handlers.MembersHandler
	AuthFilter *auth.RequestAuthFilter
	LoginPath  string
}

// RegisterRoutes wires HTTP routes. The auth filter runs in front of every
// route; it lets the login path through untouched.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthFilter.Handle)

	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	app.Post(cfg.LoginPath, cfg.Auth.Login)
	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/logout", auth.RequireAuthenticated(), cfg.Auth.Logout)

	members := app.Group("/members", auth.RequireAuthenticated())
	members.Get("/me", cfg.Members.Me)

	admin := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/members/:loginName", cfg.Members.Get)
}
