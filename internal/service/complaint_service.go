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

// ComplaintService coordinates complaint intake and read paths. Every read of
// a complaint detail passes the thread and owner identity through the
// visibility rules before it leaves this package.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	comments   repository.CommentRepository
	audit      repository.AuditLogRepository
	tx         repository.TxRunner
	dispatcher events.Dispatcher
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	CommentRepo   repository.CommentRepository
	AuditRepo     repository.AuditLogRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
}

// ComplaintCreateInput describes the intake payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Priority    domain.ComplaintPriority
	IsAnonymous bool
	IsDraft     bool
}

// ComplaintListFilter describes listing filters.
type ComplaintListFilter struct {
	Statuses    []domain.ComplaintStatus
	Categories  []domain.ComplaintCategory
	Priorities  []domain.ComplaintPriority
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ComplaintDetail is a visibility-filtered view of a complaint.
type ComplaintDetail struct {
	Complaint     *domain.Complaint
	OwnerIdentity string
	Comments      []domain.Comment
	AuditTrail    []domain.AuditEntry
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		comments:   deps.CommentRepo,
		audit:      deps.AuditRepo,
		tx:         deps.TxRunner,
		dispatcher: deps.Dispatcher,
	}
}

// CreateComplaint files a complaint for a student. Drafts stay private and
// unaudited until submitted; direct submissions enter NEW with a CREATED
// audit entry in the same transaction.
func (s *ComplaintService) CreateComplaint(ctx context.Context, studentID string, input ComplaintCreateInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	complaint := &domain.Complaint{
		StudentID:   studentID,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		IsAnonymous: input.IsAnonymous,
		IsDraft:     input.IsDraft,
		Status:      domain.StatusNew,
	}
	if input.IsDraft {
		complaint.Status = domain.StatusDraft
	}

	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.complaints.Create(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		if complaint.IsDraft {
			return nil
		}
		return s.appendCreatedEntry(ctx, tx, complaint, studentID)
	})
	if err != nil {
		return nil, err
	}
	if !complaint.IsDraft {
		s.publishCreatedEvent(ctx, complaint, studentID)
	}
	return complaint, nil
}

// SubmitDraft converts a draft into a live complaint. This is the only
// outward path from DRAFT; the transition engine refuses drafts entirely.
func (s *ComplaintService) SubmitDraft(ctx context.Context, studentID, complaintID string) (*domain.Complaint, error) {
	var submitted *domain.Complaint
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if complaint.StudentID != studentID {
			return apperrors.NewNotOwner()
		}
		if !complaint.IsDraft {
			return apperrors.NewConflict("complaint is not a draft", map[string]any{
				"current_status": complaint.Status,
			})
		}
		complaint.IsDraft = false
		complaint.Status = domain.StatusNew
		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.appendCreatedEntry(ctx, tx, complaint, studentID); err != nil {
			return err
		}
		submitted = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishCreatedEvent(ctx, submitted, studentID)
	return submitted, nil
}

// GetForStudent fetches a complaint ensuring ownership, with the thread
// filtered to the student view.
func (s *ComplaintService) GetForStudent(ctx context.Context, studentID, complaintID string) (*ComplaintDetail, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
	}
	if complaint.StudentID != studentID {
		return nil, apperrors.NewNotOwner()
	}
	return s.detailFor(ctx, complaint, domain.RoleStudent)
}

// GetForStaff fetches a complaint for a staff viewer. Internal notes are
// visible; the owner identity of anonymous complaints is still withheld from
// lecturers.
func (s *ComplaintService) GetForStaff(ctx context.Context, viewer Actor, complaintID string) (*ComplaintDetail, error) {
	if !domain.IsStaffRole(viewer.Role) {
		return nil, apperrors.NewForbidden("staff role required")
	}
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
	}
	if complaint.IsDraft {
		// Unsubmitted drafts do not exist as far as staff are concerned.
		return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
	}
	return s.detailFor(ctx, complaint, viewer.Role)
}

// ListForStudent returns the student's own complaints, drafts included.
func (s *ComplaintService) ListForStudent(ctx context.Context, studentID string, filter ComplaintListFilter) ([]domain.Complaint, error) {
	repoFilter := repository.ComplaintFilter{
		StudentID:   &studentID,
		Statuses:    filter.Statuses,
		Categories:  filter.Categories,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	complaints, err := s.complaints.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// ListForStaff returns complaints matching staff filters. Drafts never show
// up in staff listings.
func (s *ComplaintService) ListForStaff(ctx context.Context, viewer Actor, filter ComplaintListFilter) ([]domain.Complaint, error) {
	if !domain.IsStaffRole(viewer.Role) {
		return nil, apperrors.NewForbidden("staff role required")
	}
	// Drafts stay private until submitted, even when asked for explicitly.
	statuses := make([]domain.ComplaintStatus, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		if status != domain.StatusDraft {
			statuses = append(statuses, status)
		}
	}
	if len(filter.Statuses) > 0 && len(statuses) == 0 {
		return []domain.Complaint{}, nil
	}
	if len(statuses) == 0 {
		statuses = []domain.ComplaintStatus{
			domain.StatusNew, domain.StatusOpened, domain.StatusInProgress,
			domain.StatusResolved, domain.StatusClosed, domain.StatusReopened,
		}
	}
	repoFilter := repository.ComplaintFilter{
		AssignedTo:  filter.AssignedTo,
		Statuses:    statuses,
		Categories:  filter.Categories,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	complaints, err := s.complaints.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// AddTags appends tags to a complaint and audits the old and new sets.
func (s *ComplaintService) AddTags(ctx context.Context, actor Actor, complaintID string, tags []string) (*domain.Complaint, error) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return nil, apperrors.NewValidationError("at least one tag required", map[string]any{"field": "tags"})
	}

	var updated *domain.Complaint
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		complaint, err := s.complaints.GetForUpdate(ctx, tx, complaintID)
		if err != nil {
			return notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanPerform(actor.Role, domain.ActionAddTags, complaint.Status) {
			return apperrors.NewForbidden("tagging requires a lecturer or admin role")
		}
		existing := make(map[string]struct{}, len(complaint.Tags))
		for _, tag := range complaint.Tags {
			existing[tag] = struct{}{}
		}
		oldTags := append([]string{}, complaint.Tags...)
		for _, tag := range cleaned {
			if _, ok := existing[tag]; !ok {
				complaint.Tags = append(complaint.Tags, tag)
				existing[tag] = struct{}{}
			}
		}
		if len(complaint.Tags) == len(oldTags) {
			updated = complaint
			return nil
		}
		if err := s.complaints.Update(ctx, tx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		actorID := actor.ID
		entry := &domain.AuditEntry{
			ComplaintID: complaint.ID,
			Action:      domain.ActionTagsAdded,
			ActorType:   actor.SubjectType(),
			ActorID:     &actorID,
			OldValue:    map[string]any{"tags": oldTags},
			NewValue:    map[string]any{"tags": complaint.Tags},
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
	return updated, nil
}

// AuditTrail returns the complaint's audit entries in display order, filtered
// for the viewer like every other read path.
func (s *ComplaintService) AuditTrail(ctx context.Context, viewer Actor, complaintID string) ([]domain.AuditEntry, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOnNoRows(err, "complaint", map[string]any{"complaint_id": complaintID})
	}
	entries, err := s.audit.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return domain.VisibleAuditEntries(complaint, entries, viewer.Role), nil
}

func (s *ComplaintService) detailFor(ctx context.Context, complaint *domain.Complaint, viewer domain.Role) (*ComplaintDetail, error) {
	comments, err := s.comments.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entries, err := s.audit.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ComplaintDetail{
		Complaint:     complaint,
		OwnerIdentity: domain.VisibleIdentity(complaint, viewer),
		Comments:      domain.VisibleComments(comments, viewer),
		AuditTrail:    domain.VisibleAuditEntries(complaint, entries, viewer),
	}, nil
}

func (s *ComplaintService) appendCreatedEntry(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint, studentID string) error {
	actorID := studentID
	entry := &domain.AuditEntry{
		ComplaintID: complaint.ID,
		Action:      domain.ActionCreated,
		ActorType:   domain.SubjectTypeStudent,
		ActorID:     &actorID,
		NewValue: map[string]any{
			"status":   complaint.Status,
			"category": complaint.Category,
			"priority": complaint.Priority,
		},
	}
	if err := s.audit.Create(ctx, tx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ComplaintService) publishCreatedEvent(ctx context.Context, complaint *domain.Complaint, studentID string) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       eventActor(Actor{ID: studentID, Role: domain.RoleStudent}),
		Timestamp:   time.Now(),
		Payload: events.ComplaintCreatedPayload{
			Category:    complaint.Category,
			Priority:    complaint.Priority,
			Title:       complaint.Title,
			IsAnonymous: complaint.IsAnonymous,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
