package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

type lifecycleHarness struct {
	complaints *fakeComplaintRepo
	audit      *fakeAuditRepo
	dispatcher *recordingDispatcher
	svc        *LifecycleService
}

func newLifecycleHarness() *lifecycleHarness {
	clock := newFakeClock()
	complaints := newFakeComplaintRepo(clock)
	audit := newFakeAuditRepo(clock)
	dispatcher := &recordingDispatcher{}
	svc := NewLifecycleService(LifecycleDependencies{
		ComplaintRepo: complaints,
		AuditRepo:     audit,
		TxRunner:      &fakeTxRunner{},
		Dispatcher:    dispatcher,
	})
	return &lifecycleHarness{complaints: complaints, audit: audit, dispatcher: dispatcher, svc: svc}
}

func (h *lifecycleHarness) seed(status domain.ComplaintStatus) *domain.Complaint {
	return h.complaints.seed(&domain.Complaint{
		StudentID:   "student-1",
		Title:       "Broken projector in LH-2",
		Description: "The projector has been broken for two weeks.",
		Category:    domain.CategoryFacilities,
		Priority:    domain.PriorityMedium,
		Status:      status,
	})
}

var lecturer = Actor{ID: "staff-1", Role: domain.RoleLecturer}

func TestApplyTransitionHappyPath(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusNew)

	updated, err := h.svc.ApplyTransition(context.Background(), lecturer, complaint.ID, domain.StatusOpened, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpened, updated.Status)
	require.NotNil(t, updated.OpenedAt)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionStatusChanged, entries[0].Action)
	assert.Equal(t, map[string]any{"status": domain.StatusNew}, entries[0].OldValue)
	assert.Equal(t, map[string]any{"status": domain.StatusOpened}, entries[0].NewValue)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, "staff-1", *entries[0].ActorID)

	published := h.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintStatusChanged, published[0].Type)
}

func TestApplyTransitionSameStatusIsNoOp(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusOpened)

	updated, err := h.svc.ApplyTransition(context.Background(), lecturer, complaint.ID, domain.StatusOpened, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpened, updated.Status)
	assert.Empty(t, h.audit.byComplaint(complaint.ID), "no-op must not audit")
	assert.Empty(t, h.dispatcher.published(), "no-op must not publish")
}

func TestApplyTransitionRejectsUnknownPair(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusClosed)

	_, err := h.svc.ApplyTransition(context.Background(), lecturer, complaint.ID, domain.StatusInProgress, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.CodeOf(err))

	stored, _ := h.complaints.GetByID(context.Background(), complaint.ID)
	assert.Equal(t, domain.StatusClosed, stored.Status, "rejected transition must not mutate")
	assert.Empty(t, h.audit.byComplaint(complaint.ID), "rejected transition must not audit")
}

func TestApplyTransitionStudentForbidden(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusNew)

	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	_, err := h.svc.ApplyTransition(context.Background(), student, complaint.ID, domain.StatusOpened, "")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
}

func TestApplyTransitionNotFound(t *testing.T) {
	h := newLifecycleHarness()
	_, err := h.svc.ApplyTransition(context.Background(), lecturer, "missing", domain.StatusOpened, "")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestResolvedAtSetOnce(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusInProgress)
	ctx := context.Background()

	resolved, err := h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolved := *resolved.ResolvedAt

	_, err = h.svc.Reopen(ctx, "student-1", complaint.ID, "still broken")
	require.NoError(t, err)

	again, err := h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolved, *again.ResolvedAt, "resolved_at records the first resolution only")
	assert.True(t, again.HasBeenResolved())
}

func TestOpenedAtSetOnFirstLeaveOfNew(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusNew)
	ctx := context.Background()

	resolved, err := h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	require.NotNil(t, resolved.OpenedAt, "leaving NEW sets opened_at even on a direct resolve")
	firstOpened := *resolved.OpenedAt

	_, err = h.svc.Reopen(ctx, "student-1", complaint.ID, "not fixed")
	require.NoError(t, err)
	stored, _ := h.complaints.GetByID(ctx, complaint.ID)
	assert.Equal(t, firstOpened, *stored.OpenedAt)
}

func TestReopenRequiresJustification(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusResolved)

	for _, justification := range []string{"", "   ", "\t\n"} {
		_, err := h.svc.Reopen(context.Background(), "student-1", complaint.ID, justification)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeJustificationRequired, apperrors.CodeOf(err))
	}
	assert.Empty(t, h.audit.byComplaint(complaint.ID))
}

func TestReopenOwnerOnly(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusResolved)

	_, err := h.svc.Reopen(context.Background(), "student-2", complaint.ID, "this is not fixed")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeReopenNotAllowed, apperrors.CodeOf(err))
}

func TestReopenRequiresSettledStatus(t *testing.T) {
	h := newLifecycleHarness()
	for _, status := range []domain.ComplaintStatus{domain.StatusNew, domain.StatusOpened, domain.StatusInProgress, domain.StatusReopened} {
		complaint := h.seed(status)
		_, err := h.svc.Reopen(context.Background(), "student-1", complaint.ID, "please look again")
		require.Error(t, err, "reopen from %s must fail", status)
		assert.Equal(t, apperrors.CodeReopenNotAllowed, apperrors.CodeOf(err))
	}
}

func TestReopenStoresJustificationVerbatim(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusClosed)

	justification := "The projector broke again the day after it was marked resolved."
	updated, err := h.svc.Reopen(context.Background(), "student-1", complaint.ID, justification)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReopened, updated.Status)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionReopened, entries[0].Action)
	assert.Equal(t, justification, entries[0].Details["justification"])
	assert.Equal(t, domain.SubjectTypeStudent, entries[0].ActorType)

	published := h.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintReopened, published[0].Type)
}

func TestEscalate(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusInProgress)
	ctx := context.Background()

	first, err := h.svc.Escalate(ctx, lecturer, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EscalationLevel)
	require.NotNil(t, first.EscalatedAt)
	firstEscalated := *first.EscalatedAt

	second, err := h.svc.Escalate(ctx, lecturer, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.EscalationLevel)
	assert.Equal(t, firstEscalated, *second.EscalatedAt, "escalated_at marks the first escalation")

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionEscalated, entries[0].Action)
	assert.Equal(t, map[string]any{"escalation_level": 1}, entries[1].OldValue)
}

func TestEscalateStudentForbidden(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusOpened)

	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	_, err := h.svc.Escalate(context.Background(), student, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
}

// Walks a complaint through a full life and checks the audit trail reads as
// an ordered, append-only history.
func TestAuditTrailOrderedHistory(t *testing.T) {
	h := newLifecycleHarness()
	complaint := h.seed(domain.StatusNew)
	ctx := context.Background()

	_, err := h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusOpened, "")
	require.NoError(t, err)
	_, err = h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusInProgress, "")
	require.NoError(t, err)
	_, err = h.svc.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusResolved, "replaced the bulb")
	require.NoError(t, err)
	_, err = h.svc.Reopen(ctx, "student-1", complaint.ID, "went dark again")
	require.NoError(t, err)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 4)

	wantActions := []domain.AuditAction{
		domain.ActionStatusChanged,
		domain.ActionStatusChanged,
		domain.ActionStatusChanged,
		domain.ActionReopened,
	}
	for i, entry := range entries {
		assert.Equal(t, wantActions[i], entry.Action)
		if i > 0 {
			prev := entries[i-1]
			assert.Greater(t, entry.Seq, prev.Seq)
			assert.False(t, entry.CreatedAt.Before(prev.CreatedAt))
			assert.Equal(t, prev.NewValue["status"], entry.OldValue["status"], "each entry's old status chains from the previous entry")
		}
	}
	assert.Equal(t, map[string]any{"status": domain.StatusReopened}, entries[3].NewValue)
}
