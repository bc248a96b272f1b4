package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every repository. Handlers translate these to
// HTTP statuses; repositories never know about HTTP.
var (
	// ErrNotFound means the requested room, user, or account does not exist.
	// Distinct from an entity that exists but is empty.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means an identifier collision: room id already taken, or
	// username already registered (case-insensitive).
	ErrDuplicate = errors.New("already exists")
)

// ValidationError reports a malformed or missing required field on a write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
