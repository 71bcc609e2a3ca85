package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/http/handlers"
	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Boards         *handlers.BoardHandler
	Timesheets     *handlers.TimesheetHandler
	Payroll        *handlers.PayrollHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessageHandler
	Workspace      *handlers.WorkspaceHandler
	Analytics      *handlers.AnalyticsHandler
	Assistant      *handlers.AssistantHandler
	Realtime       *handlers.RealtimeHandler
	AuthMiddleware *auth.AuthMiddleware
	ServiceRoleKey string
}

// RegisterRoutes wires HTTP routes. Public routes come first; everything
// registered after the protected group requires a session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/login", cfg.Auth.Login)

	app.Post("/functions/create-profile", auth.RequireServiceKey(cfg.ServiceRoleKey), cfg.Auth.CreateProfile)

	if cfg.Realtime != nil {
		app.Get("/realtime", cfg.AuthMiddleware.Handle, cfg.Realtime.Upgrade, cfg.Realtime.Serve())
	}

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	reviewers := auth.RequireRole(domain.RoleManager, domain.RoleHR, domain.RoleAdmin)
	payroll := auth.RequireRole(domain.RoleHR, domain.RoleAdmin)

	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Patch("/auth/me", cfg.Auth.UpdateMe)
	protected.Get("/metrics", reviewers, cfg.Health.Metrics)

	protected.Get("/boards", cfg.Boards.ListBoards)
	protected.Post("/boards", cfg.Boards.CreateBoard)
	protected.Delete("/boards/:id", cfg.Boards.DeleteBoard)
	protected.Get("/boards/:id/tasks", cfg.Boards.ListTasks)
	protected.Post("/boards/:id/tasks", cfg.Boards.CreateTask)
	protected.Patch("/tasks/:id", cfg.Boards.UpdateTask)
	protected.Post("/tasks/:id/complete", cfg.Boards.CompleteTask)
	protected.Delete("/tasks/:id", cfg.Boards.DeleteTask)

	protected.Get("/timesheets/week", cfg.Timesheets.GetWeek)
	protected.Put("/timesheets/entries", cfg.Timesheets.SaveEntry)
	protected.Delete("/timesheets/entries/:id", cfg.Timesheets.DeleteEntry)
	protected.Post("/timesheets/submit", cfg.Timesheets.Submit)
	protected.Post("/timesheets/vacation", cfg.Timesheets.FillVacation)
	protected.Get("/timesheets/review", reviewers, cfg.Timesheets.ListForReview)
	protected.Post("/timesheets/:id/withdraw", cfg.Timesheets.Withdraw)
	protected.Post("/timesheets/:id/review", reviewers, cfg.Timesheets.Review)
	protected.Post("/timesheets/:id/reopen", reviewers, cfg.Timesheets.Reopen)
	protected.Get("/overtime", reviewers, cfg.Timesheets.ListOvertime)
	protected.Post("/overtime/:id/decision", reviewers, cfg.Timesheets.DecideOvertime)

	protected.Post("/payroll/generate", payroll, cfg.Payroll.Generate)
	protected.Get("/payroll", payroll, cfg.Payroll.List)
	protected.Get("/payroll/export", payroll, cfg.Payroll.Export)
	protected.Post("/payroll/cutoff/paid", payroll, cfg.Payroll.MarkCutoffPaid)
	protected.Post("/payroll/:id/paid", payroll, cfg.Payroll.MarkPaid)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	protected.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	protected.Patch("/tickets/:id/assignee", cfg.Tickets.Assign)

	protected.Get("/rooms", cfg.Messages.Rooms)
	protected.Get("/rooms/:room/messages", cfg.Messages.ListRoom)
	protected.Post("/rooms/:room/messages", cfg.Messages.Send)
	protected.Patch("/messages/:id", cfg.Messages.Edit)
	protected.Delete("/messages/:id", cfg.Messages.Delete)

	protected.Get("/notifications", cfg.Workspace.ListNotifications)
	protected.Post("/notifications/read-all", cfg.Workspace.MarkAllNotificationsRead)
	protected.Post("/notifications/:id/read", cfg.Workspace.MarkNotificationRead)
	protected.Get("/documents", cfg.Workspace.ListDocuments)
	protected.Post("/documents", cfg.Workspace.CreateDocument)
	protected.Get("/documents/:id", cfg.Workspace.GetDocument)
	protected.Patch("/documents/:id", cfg.Workspace.UpdateDocument)
	protected.Delete("/documents/:id", cfg.Workspace.DeleteDocument)

	protected.Get("/analytics/insights", reviewers, cfg.Analytics.Insights)
	protected.Post("/analytics/sales", reviewers, cfg.Analytics.RecordSale)
	protected.Post("/analytics/expenses", reviewers, cfg.Analytics.RecordExpense)
	protected.Get("/candidates", reviewers, cfg.Analytics.ListCandidates)
	protected.Post("/candidates", reviewers, cfg.Analytics.CreateCandidate)
	protected.Post("/feedback", cfg.Analytics.SubmitFeedback)

	protected.Get("/assistant/:persona", cfg.Assistant.Greeting)
	protected.Post("/assistant/:persona/messages", cfg.Assistant.Reply)
}
