package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// RatingService gates satisfaction ratings: owner-only, once per complaint,
// and only after the complaint has been resolved at least once. Ratings are
// never edited or overwritten after submission.
type RatingService struct {
	complaints repository.ComplaintRepository
	ratings    repository.RatingRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// RatingDependencies bundles repositories.
type RatingDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	RatingRepo    repository.RatingRepository
	AuditRepo     repository.AuditLogRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
}

// NewRatingService constructs the service.
func NewRatingService(deps RatingDependencies) *RatingService {
	return &RatingService{
		complaints: deps.ComplaintRepo,
		ratings:    deps.RatingRepo,
		audit:      deps.AuditRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// SubmitRating creates the one rating a student may leave on their resolved
// complaint. A duplicate fails with AlreadyRated and leaves the original
// rating untouched.
func (s *RatingService) SubmitRating(ctx context.Context, studentID, complaintID string, value int, feedback string) (*domain.Rating, error) {
	if value < 1 || value > 5 {
		return nil, apperrors.NewInvalidRatingValue(value)
	}
	feedback = strings.TrimSpace(feedback)

	var created *domain.Rating
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if complaint.StudentID != studentID {
			return apperrors.NewNotOwner()
		}
		if !complaint.HasBeenResolved() {
			return apperrors.NewConflict("complaint has not been resolved yet", map[string]any{
				"current_status": complaint.Status,
			})
		}
		if _, err := s.ratings.GetByComplaintAndStudent(ctx, complaintID, studentID); err == nil {
			return apperrors.NewAlreadyRated(complaintID)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}

		rating := &domain.Rating{
			ComplaintID: complaint.ID,
			StudentID:   studentID,
			Value:       value,
			Feedback:    feedback,
		}
		if err := s.ratings.Create(ctx, tx, rating); err != nil {
			return apperrors.MapError(err)
		}
		actorID := studentID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      domain.ActionRated,
			ActorType:   domain.SubjectTypeStudent,
			ActorID:     &actorID,
			NewValue:    map[string]any{"rating": value},
			Details: map[string]any{
				"feedback": feedback,
			},
		}
		if err := s.audit.Create(ctx, tx, entry); err != nil {
			return apperrors.MapError(err)
		}
		created = rating
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintRated,
		ComplaintID: created.ComplaintID,
		Actor:       eventActor(Actor{ID: studentID, Role: domain.RoleStudent}),
		Payload: events.RatedPayload{
			RatingID: created.ID,
			Value:    created.Value,
		},
	})
	return created, nil
}

func (s *RatingService) publishEvent(ctx context.Context, event events.Event) {
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
