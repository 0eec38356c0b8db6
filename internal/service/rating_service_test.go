package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

type ratingHarness struct {
	complaints *fakeComplaintRepo
	ratings    *fakeRatingRepo
	audit      *fakeAuditRepo
	dispatcher *recordingDispatcher
	svc        *RatingService
}

func newRatingHarness() *ratingHarness {
	clock := newFakeClock()
	complaints := newFakeComplaintRepo(clock)
	ratings := newFakeRatingRepo(clock)
	audit := newFakeAuditRepo(clock)
	dispatcher := &recordingDispatcher{}
	svc := NewRatingService(RatingDependencies{
		ComplaintRepo: complaints,
		RatingRepo:    ratings,
		AuditRepo:     audit,
		TxRunner:      &fakeTxRunner{},
		Dispatcher:    dispatcher,
	})
	return &ratingHarness{complaints: complaints, ratings: ratings, audit: audit, dispatcher: dispatcher, svc: svc}
}

func (h *ratingHarness) seedResolved() *domain.Complaint {
	resolvedAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return h.complaints.seed(&domain.Complaint{
		StudentID:  "student-1",
		Status:     domain.StatusResolved,
		ResolvedAt: &resolvedAt,
	})
}

func TestSubmitRating(t *testing.T) {
	h := newRatingHarness()
	complaint := h.seedResolved()

	rating, err := h.svc.SubmitRating(context.Background(), "student-1", complaint.ID, 4, "  handled quickly  ")
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Value)
	assert.Equal(t, "handled quickly", rating.Feedback)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionRated, entries[0].Action)
	assert.Equal(t, map[string]any{"rating": 4}, entries[0].NewValue)

	published := h.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintRated, published[0].Type)
}

func TestSubmitRatingOutOfRange(t *testing.T) {
	h := newRatingHarness()
	complaint := h.seedResolved()

	for _, value := range []int{0, -1, 6, 100} {
		_, err := h.svc.SubmitRating(context.Background(), "student-1", complaint.ID, value, "")
		require.Error(t, err, "value %d must be rejected", value)
		assert.Equal(t, apperrors.CodeInvalidRatingValue, apperrors.CodeOf(err))
	}
	assert.Empty(t, h.audit.byComplaint(complaint.ID))
}

func TestSubmitRatingNotOwner(t *testing.T) {
	h := newRatingHarness()
	complaint := h.seedResolved()

	_, err := h.svc.SubmitRating(context.Background(), "student-2", complaint.ID, 5, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotOwner, apperrors.CodeOf(err))
}

func TestSubmitRatingBeforeResolution(t *testing.T) {
	h := newRatingHarness()
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusInProgress})

	_, err := h.svc.SubmitRating(context.Background(), "student-1", complaint.ID, 5, "")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
}

func TestSubmitRatingDuplicate(t *testing.T) {
	h := newRatingHarness()
	complaint := h.seedResolved()
	ctx := context.Background()

	first, err := h.svc.SubmitRating(ctx, "student-1", complaint.ID, 2, "slow")
	require.NoError(t, err)

	_, err = h.svc.SubmitRating(ctx, "student-1", complaint.ID, 5, "actually fine")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyRated, apperrors.CodeOf(err))

	stored, err := h.ratings.GetByComplaintAndStudent(ctx, complaint.ID, "student-1")
	require.NoError(t, err)
	assert.Equal(t, first.Value, stored.Value, "original rating must survive the duplicate attempt")
	assert.Equal(t, "slow", stored.Feedback)
	assert.Len(t, h.audit.byComplaint(complaint.ID), 1)
}

// A reopened complaint stays ratable: resolved_at marks that resolution
// happened, regardless of where the status moved afterwards.
func TestSubmitRatingAfterReopen(t *testing.T) {
	h := newRatingHarness()
	resolvedAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	complaint := h.complaints.seed(&domain.Complaint{
		StudentID:  "student-1",
		Status:     domain.StatusReopened,
		ResolvedAt: &resolvedAt,
	})

	rating, err := h.svc.SubmitRating(context.Background(), "student-1", complaint.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 3, rating.Value)
}
