package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusDraft      ComplaintStatus = "DRAFT"
	StatusNew        ComplaintStatus = "NEW"
	StatusOpened     ComplaintStatus = "OPENED"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusClosed     ComplaintStatus = "CLOSED"
	StatusReopened   ComplaintStatus = "REOPENED"
)

// ComplaintCategory classifies the subject of a complaint.
type ComplaintCategory string

const (
	CategoryAcademic       ComplaintCategory = "ACADEMIC"
	CategoryFacilities     ComplaintCategory = "FACILITIES"
	CategoryHarassment     ComplaintCategory = "HARASSMENT"
	CategoryCourseContent  ComplaintCategory = "COURSE_CONTENT"
	CategoryAdministrative ComplaintCategory = "ADMINISTRATIVE"
	CategoryOther          ComplaintCategory = "OTHER"
)

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "LOW"
	PriorityMedium   ComplaintPriority = "MEDIUM"
	PriorityHigh     ComplaintPriority = "HIGH"
	PriorityCritical ComplaintPriority = "CRITICAL"
)

// Complaint is the aggregate root tracked through its lifecycle.
type Complaint struct {
	ID              string
	StudentID       string
	AssignedTo      *string
	Title           string
	Description     string
	Category        ComplaintCategory
	Priority        ComplaintPriority
	Status          ComplaintStatus
	IsAnonymous     bool
	IsDraft         bool
	Tags            []string
	EscalationLevel int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OpenedAt        *time.Time
	ResolvedAt      *time.Time
	EscalatedAt     *time.Time
}

// HasBeenResolved reports whether the complaint ever reached RESOLVED.
// ResolvedAt is set exactly once and never cleared, so it doubles as the
// once-resolved history marker for the rating gate.
func (c *Complaint) HasBeenResolved() bool {
	return c.ResolvedAt != nil
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(cat ComplaintCategory) bool {
	switch cat {
	case CategoryAcademic, CategoryFacilities, CategoryHarassment,
		CategoryCourseContent, CategoryAdministrative, CategoryOther:
		return true
	}
	return false
}

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusNew:        {StatusOpened, StatusInProgress, StatusResolved, StatusClosed},
	StatusOpened:     {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusReopened:   {StatusInProgress, StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed, StatusReopened},
	StatusClosed:     {StatusReopened},
	StatusDraft:      {},
}

// CanTransition reports whether current -> next appears in the closed-world
// transition table. Drafts have no outward transitions here; submission is a
// separate operation.
func CanTransition(current, next ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
