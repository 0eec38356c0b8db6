package domain

import "time"

// Rating is a satisfaction score submitted by the complaint owner after
// resolution. At most one rating exists per (complaint, student) and ratings
// are never edited once submitted.
type Rating struct {
	ID          string
	ComplaintID string
	StudentID   string
	Value       int
	Feedback    string
	CreatedAt   time.Time
}
