package domain

// Action enumerates the mutating operations gated by role capabilities.
type Action string

const (
	ActionChangeStatus Action = "CHANGE_STATUS"
	ActionAssign       Action = "ASSIGN"
	ActionComment      Action = "COMMENT"
	ActionInternalNote Action = "INTERNAL_NOTE"
	ActionReopen       Action = "REOPEN"
	ActionRate         Action = "RATE"
	ActionEscalate     Action = "ESCALATE"
	ActionAddTags      Action = "ADD_TAGS"
	ActionAddFeedback  Action = "ADD_FEEDBACK"
)

// CanPerform is the single capability check consulted by every mutating
// service. It answers whether a role may attempt the action given the
// complaint's current status; finer preconditions (ownership, transition
// table, uniqueness) stay with the owning component.
func CanPerform(role Role, action Action, status ComplaintStatus) bool {
	switch action {
	case ActionChangeStatus, ActionAssign, ActionEscalate, ActionAddTags, ActionAddFeedback:
		return IsStaffRole(role)
	case ActionInternalNote:
		return IsStaffRole(role)
	case ActionComment:
		// Drafts have no thread yet.
		return status != StatusDraft
	case ActionReopen:
		// Staff reopen through the ordinary transition table; students only
		// through the reopen workflow, and only from a settled status.
		if IsStaffRole(role) {
			return status == StatusResolved || status == StatusClosed
		}
		return role == RoleStudent && (status == StatusResolved || status == StatusClosed)
	case ActionRate:
		return role == RoleStudent
	}
	return false
}
