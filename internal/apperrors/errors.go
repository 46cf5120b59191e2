package apperrors

import (
	"errors"
	"strings"
)

// ErrNotFound indicates that no entry exists with the requested id.
var ErrNotFound = errors.New("resource not found")

// ErrForbidden indicates the entry exists but belongs to another user.
var ErrForbidden = errors.New("forbidden")

// ValidationError carries one message per violated rule so the client
// sees every problem at once, not just the first.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidation builds a ValidationError from rule messages.
func NewValidation(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
