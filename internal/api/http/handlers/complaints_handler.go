package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages student-facing complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	lifecycle  *service.LifecycleService
	comments   *service.CommentService
	ratings    *service.RatingService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, lifecycle *service.LifecycleService, comments *service.CommentService, ratings *service.RatingService) *ComplaintsHandler {
	return &ComplaintsHandler{
		complaints: complaints,
		lifecycle:  lifecycle,
		comments:   comments,
		ratings:    ratings,
	}
}

// CreateComplaint POST /complaints.
func (h *ComplaintsHandler) CreateComplaint(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	complaint, err := h.complaints.CreateComplaint(c.Context(), student.ID, service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		IsAnonymous: req.IsAnonymous,
		IsDraft:     req.IsDraft,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintSummary(complaint, domain.RoleStudent)})
}

// SubmitDraft POST /complaints/:id/submit.
func (h *ComplaintsHandler) SubmitDraft(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.SubmitDraft(c.Context(), student.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, domain.RoleStudent)})
}

// ListComplaints GET /complaints.
func (h *ComplaintsHandler) ListComplaints(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	filter := parseComplaintListQuery(c)
	complaints, err := h.complaints.ListForStudent(c.Context(), student.ID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i], domain.RoleStudent))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetComplaint GET /complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	detail, err := h.complaints.GetForStudent(c.Context(), student.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(detail, domain.RoleStudent)})
}

// AddComment POST /complaints/:id/comments.
func (h *ComplaintsHandler) AddComment(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
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
	actor := service.Actor{ID: student.ID, Role: domain.RoleStudent}
	comment, err := h.comments.Add(c.Context(), actor, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// EditComment PUT /complaints/comments/:commentId.
func (h *ComplaintsHandler) EditComment(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
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
	actor := service.Actor{ID: student.ID, Role: domain.RoleStudent}
	comment, err := h.comments.Edit(c.Context(), actor, c.Params("commentId"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteComment DELETE /complaints/comments/:commentId.
func (h *ComplaintsHandler) DeleteComment(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	actor := service.Actor{ID: student.ID, Role: domain.RoleStudent}
	if err := h.comments.Delete(c.Context(), actor, c.Params("commentId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reopen POST /complaints/:id/reopen.
func (h *ComplaintsHandler) Reopen(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ReopenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.lifecycle.Reopen(c.Context(), student.ID, c.Params("id"), req.Justification)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint, domain.RoleStudent)})
}

// Rate POST /complaints/:id/rating.
func (h *ComplaintsHandler) Rate(c *fiber.Ctx) error {
	student, err := requireStudentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rating, err := h.ratings.SubmitRating(c.Context(), student.ID, c.Params("id"), req.Value, req.Feedback)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ratingResponse(rating)})
}

func requireStudentPrincipal(c *fiber.Ctx) (*domain.Student, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Student == nil {
		return nil, apperrors.NewUnauthorized("student required")
	}
	return principal.Student, nil
}

func parseComplaintListQuery(c *fiber.Ctx) service.ComplaintListFilter {
	filter := service.ComplaintListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.ComplaintCategory(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ComplaintPriority(strings.TrimSpace(part)))
		}
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func complaintSummary(complaint *domain.Complaint, viewer domain.Role) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:              complaint.ID,
		Student:         domain.VisibleIdentity(complaint, viewer),
		Title:           complaint.Title,
		Category:        complaint.Category,
		Priority:        complaint.Priority,
		Status:          complaint.Status,
		AssignedTo:      complaint.AssignedTo,
		Tags:            complaint.Tags,
		IsAnonymous:     complaint.IsAnonymous,
		IsDraft:         complaint.IsDraft,
		EscalationLevel: complaint.EscalationLevel,
		CreatedAt:       complaint.CreatedAt,
		UpdatedAt:       complaint.UpdatedAt,
	}
}

func complaintDetail(detail *service.ComplaintDetail, viewer domain.Role) dto.ComplaintDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	trail := make([]dto.AuditEntryResponse, 0, len(detail.AuditTrail))
	for i := range detail.AuditTrail {
		trail = append(trail, auditEntryResponse(&detail.AuditTrail[i]))
	}
	summary := complaintSummary(detail.Complaint, viewer)
	summary.Student = detail.OwnerIdentity
	return dto.ComplaintDetailResponse{
		ComplaintSummary: summary,
		Description:      detail.Complaint.Description,
		OpenedAt:         detail.Complaint.OpenedAt,
		ResolvedAt:       detail.Complaint.ResolvedAt,
		EscalatedAt:      detail.Complaint.EscalatedAt,
		Comments:         comments,
		AuditTrail:       trail,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorType: comment.AuthorType,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

func auditEntryResponse(entry *domain.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		ActorType: entry.ActorType,
		ActorID:   entry.ActorID,
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}

func ratingResponse(rating *domain.Rating) dto.RatingResponse {
	return dto.RatingResponse{
		ID:          rating.ID,
		ComplaintID: rating.ComplaintID,
		Value:       rating.Value,
		Feedback:    rating.Feedback,
		CreatedAt:   rating.CreatedAt,
	}
}
