package dto

import (
	"time"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                   `json:"title" validate:"required,max=200"`
	Description string                   `json:"description" validate:"required"`
	Category    domain.ComplaintCategory `json:"category" validate:"required"`
	Priority    domain.ComplaintPriority `json:"priority"`
	IsAnonymous bool                     `json:"is_anonymous"`
	IsDraft     bool                     `json:"is_draft"`
}

// TransitionRequest payload for staff status changes.
type TransitionRequest struct {
	Status domain.ComplaintStatus `json:"status" validate:"required"`
	Note   string                 `json:"note"`
}

// ReopenRequest payload.
type ReopenRequest struct {
	Justification string `json:"justification" validate:"required"`
}

// AssignRequest payload.
type AssignRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Body       string `json:"body" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// EditCommentRequest payload.
type EditCommentRequest struct {
	Body       string `json:"body" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// AddFeedbackRequest payload for official staff responses.
type AddFeedbackRequest struct {
	Body string `json:"body" validate:"required"`
}

// AddTagsRequest payload.
type AddTagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

// RateComplaintRequest payload.
type RateComplaintRequest struct {
	Value    int    `json:"value" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID              string                   `json:"id"`
	Student         string                   `json:"student"`
	Title           string                   `json:"title"`
	Category        domain.ComplaintCategory `json:"category"`
	Priority        domain.ComplaintPriority `json:"priority"`
	Status          domain.ComplaintStatus   `json:"status"`
	AssignedTo      *string                  `json:"assigned_to"`
	Tags            []string                 `json:"tags"`
	IsAnonymous     bool                     `json:"is_anonymous"`
	IsDraft         bool                     `json:"is_draft"`
	EscalationLevel int                      `json:"escalation_level"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ComplaintSummary
	Description string               `json:"description"`
	OpenedAt    *time.Time           `json:"opened_at"`
	ResolvedAt  *time.Time           `json:"resolved_at"`
	EscalatedAt *time.Time           `json:"escalated_at"`
	Comments    []CommentResponse    `json:"comments"`
	AuditTrail  []AuditEntryResponse `json:"audit_trail"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string             `json:"id"`
	AuthorType domain.SubjectType `json:"author_type"`
	AuthorID   string             `json:"author_id"`
	Body       string             `json:"body"`
	IsInternal bool               `json:"is_internal"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AuditEntryResponse represents one audit log entry.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	Action    domain.AuditAction `json:"action"`
	ActorType domain.SubjectType `json:"actor_type"`
	ActorID   *string            `json:"actor_id"`
	OldValue  map[string]any     `json:"old_value,omitempty"`
	NewValue  map[string]any     `json:"new_value,omitempty"`
	Details   map[string]any     `json:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// RatingResponse represents a submitted rating.
type RatingResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	Value       int       `json:"value"`
	Feedback    string    `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
