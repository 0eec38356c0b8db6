package domain

import "sort"

// AnonymousIdentity is what non-admin viewers see as the owner of an
// anonymous complaint.
const AnonymousIdentity = "anonymous"

// VisibleComments filters a thread for a viewer role and returns it in
// chronological order. Staff roles see everything, internal notes included;
// everyone else gets internal notes excluded entirely rather than masked.
// The function is pure and idempotent so read paths and exporters can share
// it.
func VisibleComments(comments []Comment, viewer Role) []Comment {
	filtered := make([]Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal && !IsStaffRole(viewer) {
			continue
		}
		filtered = append(filtered, comment)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered
}

// VisibleIdentity resolves the owner identity shown to a viewer. Anonymous
// complaints withhold the student from every role except admin, who sees the
// real identity for accountability handling. Evaluated independently of the
// internal-comment rule.
func VisibleIdentity(c *Complaint, viewer Role) string {
	if c.IsAnonymous && viewer != RoleAdmin {
		return AnonymousIdentity
	}
	return c.StudentID
}

// VisibleAuditEntries filters a complaint's audit trail under the same rules
// as the thread and the owner identity: entries recording internal notes are
// dropped entirely for non-staff viewers, and on anonymous complaints the
// owner's actor id is masked for everyone but admin. The input slice is left
// untouched.
func VisibleAuditEntries(c *Complaint, entries []AuditEntry, viewer Role) []AuditEntry {
	maskOwner := c.IsAnonymous && viewer != RoleAdmin
	filtered := make([]AuditEntry, 0, len(entries))
	for _, entry := range entries {
		if !IsStaffRole(viewer) && recordsInternalNote(entry) {
			continue
		}
		if maskOwner && entry.ActorType == SubjectTypeStudent && entry.ActorID != nil {
			masked := AnonymousIdentity
			entry.ActorID = &masked
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func recordsInternalNote(entry AuditEntry) bool {
	if entry.Action != ActionCommentAdded {
		return false
	}
	internal, ok := entry.Details["is_internal"].(bool)
	return ok && internal
}
