package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// Runs a complaint through assignment, resolution, rating, and reopening with
// the services sharing one audit log, the way they do in production, and pins
// the exact history that the read path returns afterwards.
func TestResolutionHistoryAcrossServices(t *testing.T) {
	clock := newFakeClock()
	complaints := newFakeComplaintRepo(clock)
	audit := newFakeAuditRepo(clock)
	staff := newFakeStaffRepo(activeStaff("staff-2"))
	ratings := newFakeRatingRepo(clock)
	dispatcher := &recordingDispatcher{}
	tx := &fakeTxRunner{}

	lifecycle := NewLifecycleService(LifecycleDependencies{
		ComplaintRepo: complaints,
		AuditRepo:     audit,
		TxRunner:      tx,
		Dispatcher:    dispatcher,
	})
	assignment := NewAssignmentService(AssignmentDependencies{
		ComplaintRepo: complaints,
		StaffRepo:     staff,
		AuditRepo:     audit,
		TxRunner:      tx,
		Dispatcher:    dispatcher,
	})
	rating := NewRatingService(RatingDependencies{
		ComplaintRepo: complaints,
		RatingRepo:    ratings,
		AuditRepo:     audit,
		TxRunner:      tx,
		Dispatcher:    dispatcher,
	})

	ctx := context.Background()
	complaint := complaints.seed(&domain.Complaint{
		StudentID:   "student-1",
		Title:       "Heating broken in dorm B",
		Description: "Room temperature has been below 15C for a week.",
		Category:    domain.CategoryFacilities,
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusNew,
	})

	_, err := assignment.Assign(ctx, lecturer, complaint.ID, "staff-2")
	require.NoError(t, err)
	_, err = lifecycle.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusInProgress, "")
	require.NoError(t, err)
	_, err = lifecycle.ApplyTransition(ctx, lecturer, complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	_, err = rating.SubmitRating(ctx, "student-1", complaint.ID, 4, "fixed within days")
	require.NoError(t, err)
	final, err := lifecycle.Reopen(ctx, "student-1", complaint.ID, "heating failed again the following week")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusReopened, final.Status)
	require.NotNil(t, final.ResolvedAt, "reopening keeps the resolution timestamp")
	assert.True(t, final.HasBeenResolved())

	entries := audit.byComplaint(complaint.ID)
	require.Len(t, entries, 5)
	actions := make([]domain.AuditAction, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []domain.AuditAction{
		domain.ActionAssigned,
		domain.ActionStatusChanged,
		domain.ActionStatusChanged,
		domain.ActionRated,
		domain.ActionReopened,
	}, actions)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].Seq, entries[i-1].Seq, "history keeps insertion order")
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}
}
