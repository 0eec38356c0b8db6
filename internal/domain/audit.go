package domain

import "time"

// AuditAction captures what kind of mutation an audit entry records.
type AuditAction string

const (
	ActionCreated       AuditAction = "CREATED"
	ActionStatusChanged AuditAction = "STATUS_CHANGED"
	ActionAssigned      AuditAction = "ASSIGNED"
	ActionReassigned    AuditAction = "REASSIGNED"
	ActionCommentAdded  AuditAction = "COMMENT_ADDED"
	ActionFeedbackAdded AuditAction = "FEEDBACK_ADDED"
	ActionReopened      AuditAction = "REOPENED"
	ActionEscalated     AuditAction = "ESCALATED"
	ActionRated         AuditAction = "RATED"
	ActionTagsAdded     AuditAction = "TAGS_ADDED"
)

// AuditEntry is an immutable record of a single applied mutation.
// Entries are created once and never updated or deleted. Display order is
// created_at ascending; Seq breaks ties by insertion order.
type AuditEntry struct {
	ID          string
	Seq         int64
	ComplaintID string
	Action      AuditAction
	ActorType   SubjectType
	ActorID     *string
	OldValue    map[string]any
	NewValue    map[string]any
	Details     map[string]any
	CreatedAt   time.Time
}
