package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/http/handlers"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Students        *handlers.StudentsHandler
	Staff           *handlers.StaffHandler
	Complaints      *handlers.ComplaintsHandler
	StaffComplaints *handlers.StaffComplaintsHandler
	Presets         *handlers.PresetsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/students/register", cfg.Students.Register)
	authGroup.Post("/students/login", cfg.Students.Login)

	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	// Student surface.
	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireStudent())
	complaints.Post("", cfg.Complaints.CreateComplaint)
	complaints.Get("", cfg.Complaints.ListComplaints)
	complaints.Get("/:id", cfg.Complaints.GetComplaint)
	complaints.Post("/:id/submit", cfg.Complaints.SubmitDraft)
	complaints.Post("/:id/comments", cfg.Complaints.AddComment)
	complaints.Put("/comments/:commentId", cfg.Complaints.EditComment)
	complaints.Delete("/comments/:commentId", cfg.Complaints.DeleteComment)
	complaints.Post("/:id/reopen", cfg.Complaints.Reopen)
	complaints.Post("/:id/rating", cfg.Complaints.Rate)

	// Staff surface.
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/complaints", cfg.StaffComplaints.ListComplaints)
	staff.Get("/complaints/export.csv", cfg.StaffComplaints.ExportCSV)
	staff.Get("/complaints/:id", cfg.StaffComplaints.GetComplaint)
	staff.Post("/complaints/:id/status", cfg.StaffComplaints.ChangeStatus)
	staff.Post("/complaints/:id/assign", cfg.StaffComplaints.Assign)
	staff.Post("/complaints/:id/escalate", cfg.StaffComplaints.Escalate)
	staff.Post("/complaints/:id/tags", cfg.StaffComplaints.AddTags)
	staff.Post("/complaints/:id/feedback", cfg.StaffComplaints.AddFeedback)
	staff.Post("/complaints/:id/comments", cfg.StaffComplaints.AddComment)
	staff.Put("/complaints/comments/:commentId", cfg.StaffComplaints.EditComment)
	staff.Delete("/complaints/comments/:commentId", cfg.StaffComplaints.DeleteComment)

	// Admin-only staff directory.
	members := staff.Group("/members", auth.RequireStaffRole(domain.RoleAdmin))
	members.Post("", cfg.Staff.CreateStaff)
	members.Get("", cfg.Staff.ListStaff)
	members.Get("/:id", cfg.Staff.GetStaff)
	members.Put("/:id", cfg.Staff.UpdateStaff)

	// Saved filter presets, any authenticated subject.
	presets := app.Group("/presets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	presets.Put("", cfg.Presets.Save)
	presets.Get("", cfg.Presets.List)
	presets.Delete("/:name", cfg.Presets.Delete)
}
