package domain

import "time"

// StaffMember models a lecturer or administrator handling complaints.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
