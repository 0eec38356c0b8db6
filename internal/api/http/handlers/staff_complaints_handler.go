package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// StaffComplaintsHandler manages staff-facing complaint endpoints.
type StaffComplaintsHandler struct {
	complaints *service.ComplaintService
	lifecycle  *service.LifecycleService
	assignment *service.AssignmentService
	comments   *service.CommentService
	export     *service.ExportService
}

// NewStaffComplaintsHandler constructs handler.
func NewStaffComplaintsHandler(
	complaints *service.ComplaintService,
	lifecycle *service.LifecycleService,
	assignment *service.AssignmentService,
	comments *service.CommentService,
	export *service.ExportService,
) *StaffComplaintsHandler {
	return &StaffComplaintsHandler{
		complaints: complaints,
		lifecycle:  lifecycle,
		assignment: assignment,
		comments:   comments,
		export:     export,
	}
}

// ListComplaints GET /staff/complaints.
func (h *StaffComplaintsHandler) ListComplaints(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	filter := parseComplaintListQuery(c)
	complaints, err := h.complaints.ListForStaff(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i], actor.Role))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetComplaint GET /staff/complaints/:id.
func (h *StaffComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	detail, err := h.complaints.GetForStaff(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(detail, actor.Role)})
}

// ChangeStatus POST /staff/complaints/:id/status.
func (h *StaffComplaintsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	complaint, err := h.lifecycle.ApplyTransition(c.Context(), actor, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, actor.Role)})
}

// Assign POST /staff/complaints/:id/assign.
func (h *StaffComplaintsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	complaint, err := h.assignment.Assign(c.Context(), actor, c.Params("id"), req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, actor.Role)})
}

// Escalate POST /staff/complaints/:id/escalate.
func (h *StaffComplaintsHandler) Escalate(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	complaint, err := h.lifecycle.Escalate(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, actor.Role)})
}

// AddTags POST /staff/complaints/:id/tags.
func (h *StaffComplaintsHandler) AddTags(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.AddTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	complaint, err := h.complaints.AddTags(c.Context(), actor, c.Params("id"), req.Tags)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, actor.Role)})
}

// AddFeedback POST /staff/complaints/:id/feedback.
func (h *StaffComplaintsHandler) AddFeedback(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.AddFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.comments.AddFeedback(c.Context(), actor, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AddComment POST /staff/complaints/:id/comments.
func (h *StaffComplaintsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.comments.Add(c.Context(), actor, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// EditComment PUT /staff/complaints/comments/:commentId.
func (h *StaffComplaintsHandler) EditComment(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	var req dto.EditCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.comments.Edit(c.Context(), actor, c.Params("commentId"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteComment DELETE /staff/complaints/comments/:commentId.
func (h *StaffComplaintsHandler) DeleteComment(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.Context(), actor, c.Params("commentId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ExportCSV GET /staff/complaints/export.csv.
func (h *StaffComplaintsHandler) ExportCSV(c *fiber.Ctx) error {
	actor, err := requireStaffActor(c)
	if err != nil {
		return err
	}
	filter := parseComplaintListQuery(c)

	var buf bytes.Buffer
	if err := h.export.WriteCSV(c.Context(), actor, filter, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="complaints.csv"`)
	return c.Send(buf.Bytes())
}

func requireStaffActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return service.Actor{}, apperrors.NewUnauthorized("staff required")
	}
	return service.Actor{ID: principal.Staff.ID, Role: principal.Staff.Role}, nil
}
