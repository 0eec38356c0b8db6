package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// AssignmentService is the single write path for assigned_to, which keeps the
// complaint field and the latest assigned/reassigned audit entry in lockstep.
type AssignmentService struct {
	complaints repository.ComplaintRepository
	staff      repository.StaffRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	StaffRepo     repository.StaffRepository
	AuditRepo     repository.AuditLogRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		complaints: deps.ComplaintRepo,
		staff:      deps.StaffRepo,
		audit:      deps.AuditRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// Assign routes a complaint to a staff member. The first assignment audits as
// ASSIGNED, every later change as REASSIGNED; assigning the current assignee
// again is a no-op success. Status is never touched here.
func (s *AssignmentService) Assign(ctx context.Context, actor Actor, complaintID, staffID string) (*domain.Complaint, error) {
	assignee, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnknownAssignee(staffID)
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Active {
		return nil, apperrors.NewUnknownAssignee(staffID)
	}

	var updated *domain.Complaint
	var oldAssignee *string
	changed := false

	err = s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionAssign, complaint.Status) {
			return apperrors.NewForbidden("assignment requires a lecturer or admin role")
		}
		if complaint.AssignedTo != nil && *complaint.AssignedTo == assignee.ID {
			updated = complaint
			return nil
		}
		oldAssignee = complaint.AssignedTo
		newAssignee := assignee.ID
		complaint.AssignedTo = &newAssignee
		changed = true

		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		action := domain.ActionAssigned
		if oldAssignee != nil {
			action = domain.ActionReassigned
		}
		actorID := actor.ID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      action,
			ActorType:   actor.SubjectType(),
			ActorID:     &actorID,
			OldValue:    map[string]any{"assigned_to": oldAssignee},
			NewValue:    map[string]any{"assigned_to": newAssignee},
		}
		if err := s.audit.Create(ctx, tx, entry); err != nil {
			return apperrors.MapError(err)
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintAssigned,
			ComplaintID: updated.ID,
			Actor:       eventActor(actor),
			Payload: events.AssignedPayload{
				OldAssignee: oldAssignee,
				NewAssignee: assignee.ID,
				Reassigned:  oldAssignee != nil,
			},
		})
	}
	return updated, nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, event events.Event) {
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
