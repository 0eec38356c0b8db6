package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// CommentService manages the discussion thread of a complaint. Adding a
// comment audits; edits and deletes are author-only and leave the audit trail
// untouched, which records the comment's creation rather than its later life.
type CommentService struct {
	complaints repository.ComplaintRepository
	comments   repository.CommentRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories.
type CommentDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	CommentRepo   repository.CommentRepository
	AuditRepo     repository.AuditLogRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		complaints: deps.ComplaintRepo,
		comments:   deps.CommentRepo,
		audit:      deps.AuditRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// Add appends a comment to the thread. Students may only comment on their own
// complaints, and a student-supplied internal flag is silently coerced to
// false; only lecturers and admins can author internal notes.
func (s *CommentService) Add(ctx context.Context, actor Actor, complaintID, body string, isInternal bool) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", map[string]any{"field": "body"})
	}
	if isInternal && !domain.IsStaffRole(actor.Role) {
		isInternal = false
	}

	var created *domain.Comment
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionComment, complaint.Status) {
			return apperrors.NewForbidden("comments are not allowed on this complaint")
		}
		if actor.Role == domain.RoleStudent && complaint.StudentID != actor.ID {
			return apperrors.NewNotOwner()
		}

		comment := &domain.Comment{
			ComplaintID: complaint.ID,
			AuthorType:  actor.SubjectType(),
			AuthorID:    actor.ID,
			Body:        body,
			IsInternal:  isInternal,
		}
		if err := s.comments.Create(ctx, tx, comment); err != nil {
			return apperrors.MapError(err)
		}
		actorID := actor.ID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      domain.ActionCommentAdded,
			ActorType:   actor.SubjectType(),
			ActorID:     &actorID,
			NewValue:    map[string]any{"comment_id": comment.ID},
			Details: map[string]any{
				"is_internal":  comment.IsInternal,
				"body_preview": stringPreview(comment.Body, 120),
			},
		}
		if err := s.audit.Create(ctx, tx, entry); err != nil {
			return apperrors.MapError(err)
		}
		created = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCommentAdded,
		ComplaintID: created.ComplaintID,
		Actor:       eventActor(actor),
		Payload: events.CommentAddedPayload{
			CommentID:   created.ID,
			AuthorType:  created.AuthorType,
			IsInternal:  created.IsInternal,
			BodyPreview: stringPreview(created.Body, 120),
		},
	})
	return created, nil
}

// AddFeedback records an official staff response on a complaint. It is stored
// as a public staff comment and audited under its own kind.
func (s *CommentService) AddFeedback(ctx context.Context, actor Actor, complaintID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("feedback body required", map[string]any{"field": "body"})
	}

	var created *domain.Comment
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionAddFeedback, complaint.Status) {
			return apperrors.NewForbidden("feedback requires a lecturer or admin role")
		}

		comment := &domain.Comment{
			ComplaintID: complaint.ID,
			AuthorType:  domain.SubjectTypeStaff,
			AuthorID:    actor.ID,
			Body:        body,
		}
		if err := s.comments.Create(ctx, tx, comment); err != nil {
			return apperrors.MapError(err)
		}
		actorID := actor.ID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      domain.ActionFeedbackAdded,
			ActorType:   domain.SubjectTypeStaff,
			ActorID:     &actorID,
			NewValue:    map[string]any{"comment_id": comment.ID},
			Details: map[string]any{
				"body_preview": stringPreview(comment.Body, 120),
			},
		}
		if err := s.audit.Create(ctx, tx, entry); err != nil {
			return apperrors.MapError(err)
		}
		created = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintFeedbackAdded,
		ComplaintID: created.ComplaintID,
		Actor:       eventActor(actor),
		Payload: events.FeedbackAddedPayload{
			CommentID:   created.ID,
			BodyPreview: stringPreview(created.Body, 120),
		},
	})
	return created, nil
}

// Edit updates a comment's body and internal flag. Strictly author-only; no
// role override, admins included. Edits do not append audit entries.
func (s *CommentService) Edit(ctx context.Context, actor Actor, commentID, newBody string, newIsInternal bool) (*domain.Comment, error) {
	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return nil, apperrors.NewValidationError("comment body required", map[string]any{"field": "body"})
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOnNoRows(err, "comment", map[string]any{"comment_id": commentID})
	}
	if comment.AuthorID != actor.ID {
		return nil, apperrors.NewNotAuthor()
	}
	if newIsInternal != comment.IsInternal && !domain.IsStaffRole(actor.Role) {
		newIsInternal = comment.IsInternal
	}
	comment.Body = newBody
	comment.IsInternal = newIsInternal
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// Delete removes a comment. Author-only, same as Edit; no audit entry.
func (s *CommentService) Delete(ctx context.Context, actor Actor, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return notFoundOnNoRows(err, "comment", map[string]any{"comment_id": commentID})
	}
	if comment.AuthorID != actor.ID {
		return apperrors.NewNotAuthor()
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// VisibleThread loads the thread filtered for the viewer's role.
func (s *CommentService) VisibleThread(ctx context.Context, complaintID string, viewer domain.Role) ([]domain.Comment, error) {
	comments, err := s.comments.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return domain.VisibleComments(comments, viewer), nil
}

func (s *CommentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
