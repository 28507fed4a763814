package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-service/internal/api/http/handlers"
	"github.com/spec-kit/project-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Projects       *handlers.ProjectsHandler
	Tasks          *handlers.TasksHandler
	Tickets        *handlers.TicketsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle)
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/profile", cfg.Auth.GetProfile)
	session.Patch("/profile", cfg.Auth.UpdateProfile)
	session.Post("/profile/refresh", cfg.Auth.RefreshProfile)
	session.Post("/password/change", cfg.Auth.ChangePassword)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Post("", cfg.Projects.CreateProject)
	projects.Get("", cfg.Projects.ListProjects)
	projects.Get("/:id", cfg.Projects.GetProject)
	projects.Patch("/:id", cfg.Projects.UpdateProject)
	projects.Post("/:id/members", cfg.Projects.InviteMember)
	projects.Get("/:id/members", cfg.Projects.ListMembers)
	projects.Post("/:id/transfer-ownership", cfg.Projects.TransferOwnership)
	projects.Post("/:id/tasks", cfg.Tasks.CreateTask)
	projects.Get("/:id/tasks", cfg.Tasks.ListTasks)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Patch("/:id/status", cfg.Tasks.UpdateStatus)
	tasks.Post("/:id/approve", cfg.Tasks.Approve)
	tasks.Post("/:id/request-revisions", cfg.Tasks.RequestRevisions)
	tasks.Post("/:id/comments", cfg.Tasks.AddComment)
	tasks.Get("/:id/comments", cfg.Tasks.ListComments)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle)
	comments.Patch("/:id", cfg.Tasks.UpdateComment)
	comments.Delete("/:id", cfg.Tasks.DeleteComment)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign-self", auth.RequirePrivileged(), cfg.Tickets.AssignToSelf)
	tickets.Patch("/:id", auth.RequireSuperAdmin(), cfg.Tickets.AdminUpdate)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	app.Get("/departments", cfg.AuthMiddleware.Handle, cfg.Tickets.ListDepartments)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequirePrivileged())
	analytics.Get("/tickets", cfg.Analytics.TicketReports)
}
