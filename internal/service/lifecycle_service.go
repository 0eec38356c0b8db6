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

// LifecycleService owns every status mutation of a complaint: direct staff
// transitions, the student reopen workflow, and escalation. Each applied
// mutation commits together with exactly one audit entry; rejected requests
// mutate nothing and log nothing.
type LifecycleService struct {
	complaints repository.ComplaintRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// LifecycleDependencies bundles repositories for the lifecycle service.
type LifecycleDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	AuditRepo     repository.AuditLogRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		complaints: deps.ComplaintRepo,
		audit:      deps.AuditRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// ApplyTransition validates and applies a direct status change by staff.
// Requesting the current status is an idempotent no-op success without an
// audit entry; a target outside the transition table fails with
// InvalidTransition and touches nothing.
func (s *LifecycleService) ApplyTransition(ctx context.Context, actor Actor, complaintID string, target domain.ComplaintStatus, note string) (*domain.Complaint, error) {
	var updated *domain.Complaint
	var changedFrom domain.ComplaintStatus
	changed := false

	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionChangeStatus, complaint.Status) {
			return apperrors.NewForbidden("status changes require a lecturer or admin role")
		}
		if complaint.Status == target {
			updated = complaint
			return nil
		}
		if !domain.CanTransition(complaint.Status, target) {
			return apperrors.NewInvalidTransition(string(complaint.Status), string(target))
		}
		changedFrom = complaint.Status
		changed = true
		s.applyStatus(complaint, target)

		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		entry := statusAuditEntry(complaint.ID, actor, changedFrom, target, note)
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
		s.publishStatusEvent(ctx, actor, updated, changedFrom, target, note)
	}
	return updated, nil
}

// Reopen is the one path by which a non-staff actor influences status. It
// requires ownership, a settled complaint, and a non-blank justification that
// is stored verbatim in the audit entry details.
func (s *LifecycleService) Reopen(ctx context.Context, studentID, complaintID, justification string) (*domain.Complaint, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, apperrors.NewJustificationRequired()
	}

	var updated *domain.Complaint
	var changedFrom domain.ComplaintStatus

	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if complaint.StudentID != studentID {
			return apperrors.NewReopenNotAllowed("only the complaint owner may reopen", nil)
		}
		if !domain.CanPerform(domain.RoleStudent, domain.ActionReopen, complaint.Status) {
			return apperrors.NewReopenNotAllowed("complaint is not resolved or closed", map[string]any{
				"current_status": complaint.Status,
			})
		}
		changedFrom = complaint.Status
		s.applyStatus(complaint, domain.StatusReopened)

		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		actor := Actor{ID: studentID, Role: domain.RoleStudent}
		entry := statusAuditEntry(complaint.ID, actor, changedFrom, domain.StatusReopened, justification)
		if err := s.audit.Create(ctx, tx, entry); err != nil {
			return apperrors.MapError(err)
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishStatusEvent(ctx, Actor{ID: studentID, Role: domain.RoleStudent}, updated, changedFrom, domain.StatusReopened, justification)
	return updated, nil
}

// Escalate raises the complaint's escalation level by one. The level never
// decreases; escalated_at is set at the first escalation and kept.
func (s *LifecycleService) Escalate(ctx context.Context, actor Actor, complaintID string) (*domain.Complaint, error) {
	var updated *domain.Complaint
	var oldLevel int

	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionEscalate, complaint.Status) {
			return apperrors.NewForbidden("escalation requires a lecturer or admin role")
		}
		if complaint.IsDraft {
			return apperrors.NewValidationError("draft complaints cannot be escalated", nil)
		}
		oldLevel = complaint.EscalationLevel
		complaint.EscalationLevel++
		if complaint.EscalatedAt == nil {
			now := time.Now()
			complaint.EscalatedAt = &now
		}

		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		actorID := actor.ID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      domain.ActionEscalated,
			ActorType:   actor.SubjectType(),
			ActorID:     &actorID,
			OldValue:    map[string]any{"escalation_level": oldLevel},
			NewValue:    map[string]any{"escalation_level": complaint.EscalationLevel},
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
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintEscalated,
		ComplaintID: updated.ID,
		Actor:       eventActor(actor),
		Payload: events.EscalatedPayload{
			OldLevel: oldLevel,
			NewLevel: updated.EscalationLevel,
		},
	})
	return updated, nil
}

// applyStatus sets the new status and maintains the single-set timestamps:
// opened_at at the first transition out of NEW, resolved_at at the first
// arrival in RESOLVED. Neither is ever cleared.
func (s *LifecycleService) applyStatus(complaint *domain.Complaint, target domain.ComplaintStatus) {
	now := time.Now()
	if complaint.Status == domain.StatusNew && complaint.OpenedAt == nil {
		complaint.OpenedAt = &now
	}
	if target == domain.StatusResolved && complaint.ResolvedAt == nil {
		complaint.ResolvedAt = &now
	}
	complaint.Status = target
}

// statusAuditEntry builds the single audit entry for a transition.
// Transitions into REOPENED use the workflow's dedicated kind; everything
// else is a plain status change.
func statusAuditEntry(complaintID string, actor Actor, old, target domain.ComplaintStatus, note string) *domain.AuditEntry {
	action := domain.ActionStatusChanged
	details := map[string]any{}
	if target == domain.StatusReopened {
		action = domain.ActionReopened
		details["justification"] = note
	} else if note != "" {
		details["note"] = note
	}
	actorID := actor.ID
	return &domain.AuditEntry{
		ComplaintID: complaintID,
		Action:      action,
		ActorType:   actor.SubjectType(),
		ActorID:     &actorID,
		OldValue:    map[string]any{"status": old},
		NewValue:    map[string]any{"status": target},
		Details:     details,
	}
}

func (s *LifecycleService) publishStatusEvent(ctx context.Context, actor Actor, complaint *domain.Complaint, old, target domain.ComplaintStatus, note string) {
	if target == domain.StatusReopened {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintReopened,
			ComplaintID: complaint.ID,
			Actor:       eventActor(actor),
			Payload:     events.ReopenedPayload{Justification: note},
		})
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       eventActor(actor),
		Payload: events.StatusChangedPayload{
			OldStatus: old,
			NewStatus: target,
			Note:      note,
		},
	})
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
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
