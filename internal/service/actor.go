package service

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// Actor is the identity+role pair initiating an operation. Every mutating
// intent carries one.
type Actor struct {
	ID   string
	Role domain.Role
}

// SubjectType maps the actor's role onto the token subject taxonomy.
func (a Actor) SubjectType() domain.SubjectType {
	if domain.IsStaffRole(a.Role) {
		return domain.SubjectTypeStaff
	}
	return domain.SubjectTypeStudent
}

func eventActor(a Actor) events.Actor {
	id := a.ID
	if domain.IsStaffRole(a.Role) {
		return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &id}
	}
	return events.Actor{Type: domain.SubjectTypeStudent, StudentID: &id}
}

func notFoundOnNoRows(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

// stringPreview truncates on rune boundaries so multi-byte text never ends up
// as broken UTF-8 in audit details or event payloads.
func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
