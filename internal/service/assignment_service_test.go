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

type assignmentHarness struct {
	complaints *fakeComplaintRepo
	staff      *fakeStaffRepo
	audit      *fakeAuditRepo
	dispatcher *recordingDispatcher
	svc        *AssignmentService
}

func newAssignmentHarness(members ...*domain.StaffMember) *assignmentHarness {
	clock := newFakeClock()
	complaints := newFakeComplaintRepo(clock)
	staff := newFakeStaffRepo(members...)
	audit := newFakeAuditRepo(clock)
	dispatcher := &recordingDispatcher{}
	svc := NewAssignmentService(AssignmentDependencies{
		ComplaintRepo: complaints,
		StaffRepo:     staff,
		AuditRepo:     audit,
		TxRunner:      &fakeTxRunner{},
		Dispatcher:    dispatcher,
	})
	return &assignmentHarness{complaints: complaints, staff: staff, audit: audit, dispatcher: dispatcher, svc: svc}
}

func activeStaff(id string) *domain.StaffMember {
	return &domain.StaffMember{ID: id, Name: "Staff " + id, Email: id + "@uni.test", Role: domain.RoleLecturer, Active: true}
}

func TestAssignFirstTime(t *testing.T) {
	h := newAssignmentHarness(activeStaff("staff-2"))
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusNew})

	updated, err := h.svc.Assign(context.Background(), lecturer, complaint.ID, "staff-2")
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "staff-2", *updated.AssignedTo)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAssigned, entries[0].Action)
	assert.Equal(t, map[string]any{"assigned_to": (*string)(nil)}, entries[0].OldValue)
	assert.Equal(t, map[string]any{"assigned_to": "staff-2"}, entries[0].NewValue)

	published := h.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintAssigned, published[0].Type)
	payload, ok := published[0].Payload.(events.AssignedPayload)
	require.True(t, ok)
	assert.False(t, payload.Reassigned)
}

func TestAssignAgainAuditsAsReassigned(t *testing.T) {
	h := newAssignmentHarness(activeStaff("staff-2"), activeStaff("staff-3"))
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusOpened})
	ctx := context.Background()

	_, err := h.svc.Assign(ctx, lecturer, complaint.ID, "staff-2")
	require.NoError(t, err)
	updated, err := h.svc.Assign(ctx, lecturer, complaint.ID, "staff-3")
	require.NoError(t, err)
	assert.Equal(t, "staff-3", *updated.AssignedTo)

	entries := h.audit.byComplaint(complaint.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionAssigned, entries[0].Action)
	assert.Equal(t, domain.ActionReassigned, entries[1].Action)
	old, ok := entries[1].OldValue["assigned_to"].(*string)
	require.True(t, ok)
	require.NotNil(t, old)
	assert.Equal(t, "staff-2", *old)

	published := h.dispatcher.published()
	require.Len(t, published, 2)
	payload, ok := published[1].Payload.(events.AssignedPayload)
	require.True(t, ok)
	assert.True(t, payload.Reassigned)
}

func TestAssignSameAssigneeIsNoOp(t *testing.T) {
	h := newAssignmentHarness(activeStaff("staff-2"))
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusOpened})
	ctx := context.Background()

	_, err := h.svc.Assign(ctx, lecturer, complaint.ID, "staff-2")
	require.NoError(t, err)
	updated, err := h.svc.Assign(ctx, lecturer, complaint.ID, "staff-2")
	require.NoError(t, err)
	assert.Equal(t, "staff-2", *updated.AssignedTo)

	assert.Len(t, h.audit.byComplaint(complaint.ID), 1, "repeat assignment must not audit")
	assert.Len(t, h.dispatcher.published(), 1, "repeat assignment must not publish")
}

func TestAssignUnknownStaff(t *testing.T) {
	h := newAssignmentHarness()
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusNew})

	_, err := h.svc.Assign(context.Background(), lecturer, complaint.ID, "ghost")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownAssignee, apperrors.CodeOf(err))
	assert.Empty(t, h.audit.byComplaint(complaint.ID))
}

func TestAssignDeactivatedStaff(t *testing.T) {
	former := activeStaff("staff-9")
	former.Active = false
	h := newAssignmentHarness(former)
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusNew})

	_, err := h.svc.Assign(context.Background(), lecturer, complaint.ID, "staff-9")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownAssignee, apperrors.CodeOf(err))

	stored, _ := h.complaints.GetByID(context.Background(), complaint.ID)
	assert.Nil(t, stored.AssignedTo)
}

func TestAssignStudentForbidden(t *testing.T) {
	h := newAssignmentHarness(activeStaff("staff-2"))
	complaint := h.complaints.seed(&domain.Complaint{StudentID: "student-1", Status: domain.StatusNew})

	student := Actor{ID: "student-1", Role: domain.RoleStudent}
	_, err := h.svc.Assign(context.Background(), student, complaint.ID, "staff-2")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
}
