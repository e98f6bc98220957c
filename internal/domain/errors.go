package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied means the write gate refused the user
	ErrPermissionDenied = errors.New("user does not have write permissions")
)

// ValidationError reports a malformed field in an incoming request
type ValidationError struct {
	Field  string // Offending field name
	Reason string // Why the value was rejected
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
