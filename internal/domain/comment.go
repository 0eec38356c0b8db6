package domain

import "time"

// Comment captures one entry in a complaint's discussion thread. Internal
// notes are staff-only; the flag is stored once and visibility is computed at
// read time.
type Comment struct {
	ID          string
	ComplaintID string
	AuthorType  SubjectType
	AuthorID    string
	Body        string
	IsInternal  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
