package domain

// SubjectType differentiates student vs staff tokens.
type SubjectType string

const (
	SubjectTypeStudent SubjectType = "STUDENT"
	SubjectTypeStaff   SubjectType = "STAFF"
)

// Role is the single role concept consulted by capability checks.
// Students own complaints; lecturers and admins triage them.
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleLecturer Role = "LECTURER"
	RoleAdmin    Role = "ADMIN"
)

// IsStaffRole reports whether the role belongs to staff.
func IsStaffRole(role Role) bool {
	return role == RoleLecturer || role == RoleAdmin
}
