package domain

import "time"

// StudentStatus represents account lifecycle states for a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
)

// Student is the domain model for students who file complaints.
type Student struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       StudentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
