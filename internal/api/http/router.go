package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/feedbackhub/feedback-tracker/internal/api/http/handlers"
	"github.com/feedbackhub/feedback-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Categories     *handlers.CategoriesHandler
	Analytics      *handlers.AnalyticsHandler
	Exports        *handlers.ExportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/me", cfg.Users.Me)
	authProtected.Post("/password/change", cfg.Users.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/history", cfg.Tickets.History)

	categories := app.Group("/categories", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	categories.Get("", cfg.Categories.List)
	categories.Post("", auth.RequireAdmin(), cfg.Categories.Create)
	categories.Patch("/:id", auth.RequireAdmin(), cfg.Categories.Update)
	categories.Delete("/:id", auth.RequireAdmin(), cfg.Categories.Delete)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	analytics.Get("/overview", cfg.Analytics.Overview)
	analytics.Get("/categories", cfg.Analytics.Categories)
	analytics.Get("/trend", cfg.Analytics.Trend)
	analytics.Get("/response-performance", cfg.Analytics.ResponsePerformance)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	staff.Delete("/tickets/:id", auth.RequireAdmin(), cfg.StaffTickets.Delete)
	staff.Post("/exports", cfg.Exports.Export)
	staff.Get("/exports", cfg.Exports.History)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Patch("/users/:id/role", cfg.Users.PromoteRole)
}
