package domain

import "errors"

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("project belongs to another user")
)

// ValidationError reports a request field that failed a project rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
