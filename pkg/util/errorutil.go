package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes for domain precondition failures. All of them are expected,
// non-fatal outcomes of a disallowed request and leave state untouched.
const (
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeReopenNotAllowed      = "REOPEN_NOT_ALLOWED"
	CodeJustificationRequired = "JUSTIFICATION_REQUIRED"
	CodeAlreadyRated          = "ALREADY_RATED"
	CodeNotOwner              = "NOT_OWNER"
	CodeNotAuthor             = "NOT_AUTHOR"
	CodeUnknownAssignee       = "UNKNOWN_ASSIGNEE"
	CodeInvalidRatingValue    = "INVALID_RATING_VALUE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInvalidTransition rejects a status change not present in the transition
// table for the complaint's current status.
func NewInvalidTransition(current, target string) error {
	return NewDomainError(CodeInvalidTransition, "status transition not allowed", http.StatusConflict, map[string]any{
		"current_status": current,
		"target_status":  target,
	})
}

// NewReopenNotAllowed rejects a reopen attempt that fails the workflow
// preconditions (wrong status or wrong actor).
func NewReopenNotAllowed(message string, details map[string]any) error {
	return NewDomainError(CodeReopenNotAllowed, message, http.StatusConflict, details)
}

// NewJustificationRequired rejects a reopen with a blank justification.
func NewJustificationRequired() error {
	return NewDomainError(CodeJustificationRequired, "reopen justification required", http.StatusBadRequest, map[string]any{
		"field": "justification",
	})
}

// NewAlreadyRated rejects a second rating for the same (complaint, student).
func NewAlreadyRated(complaintID string) error {
	return NewDomainError(CodeAlreadyRated, "complaint already rated", http.StatusConflict, map[string]any{
		"complaint_id": complaintID,
	})
}

// NewNotOwner rejects an operation reserved for the complaint's owner.
func NewNotOwner() error {
	return NewDomainError(CodeNotOwner, "only the complaint owner may perform this action", http.StatusForbidden, nil)
}

// NewNotAuthor rejects comment mutation by anyone but the author.
func NewNotAuthor() error {
	return NewDomainError(CodeNotAuthor, "only the comment author may perform this action", http.StatusForbidden, nil)
}

// NewUnknownAssignee rejects assignment to an id that does not resolve to an
// active staff account.
func NewUnknownAssignee(staffID string) error {
	return NewDomainError(CodeUnknownAssignee, "assignee is not an active staff account", http.StatusUnprocessableEntity, map[string]any{
		"staff_id": staffID,
	})
}

// NewInvalidRatingValue rejects ratings outside the 1..5 range.
func NewInvalidRatingValue(value int) error {
	return NewDomainError(CodeInvalidRatingValue, "rating must be an integer between 1 and 5", http.StatusBadRequest, map[string]any{
		"field": "rating",
		"value": value,
	})
}

// CodeOf extracts the DomainError code, or empty string for foreign errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
