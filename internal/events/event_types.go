package events

import (
	"time"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintCommentAdded  EventType = "complaint_comment_added"
	EventComplaintFeedbackAdded EventType = "complaint_feedback_added"
	EventComplaintReopened      EventType = "complaint_reopened"
	EventComplaintRated         EventType = "complaint_rated"
	EventComplaintEscalated     EventType = "complaint_escalated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	StudentID *string            `json:"student_id,omitempty"`
	StaffID   *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category    domain.ComplaintCategory `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Title       string                   `json:"title"`
	IsAnonymous bool                     `json:"is_anonymous"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Note      string                 `json:"note,omitempty"`
}

// AssignedPayload payload.
type AssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee string  `json:"new_assignee"`
	Reassigned  bool    `json:"reassigned"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string             `json:"comment_id"`
	AuthorType  domain.SubjectType `json:"author_type"`
	IsInternal  bool               `json:"is_internal"`
	BodyPreview string             `json:"body_preview"`
}

// FeedbackAddedPayload payload.
type FeedbackAddedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// ReopenedPayload payload.
type ReopenedPayload struct {
	Justification string `json:"justification"`
}

// RatedPayload payload.
type RatedPayload struct {
	RatingID string `json:"rating_id"`
	Value    int    `json:"value"`
}

// EscalatedPayload payload.
type EscalatedPayload struct {
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}
