package core

import (
	"errors"
	"fmt"
)

// ValidationError blocks the triggering action and is surfaced to the user.
// It is fully recoverable by correcting the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// LookupFailure marks a failed search or fetch against the backend. Callers
// recover locally (cached data, unchanged fields) and never surface it.
type LookupFailure struct {
	Op  string
	Err error
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("lookup %s failed: %v", e.Op, e.Err)
}

func (e *LookupFailure) Unwrap() error { return e.Err }

// IsLookupFailure reports whether err is (or wraps) a LookupFailure.
func IsLookupFailure(err error) bool {
	var l *LookupFailure
	return errors.As(err, &l)
}

// PersistenceFailure marks a rejected or failed order upsert. It is surfaced
// to the user; the draft is retained unmodified so the save can be retried.
type PersistenceFailure struct {
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("save failed: %v", e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }

// IsPersistenceFailure reports whether err is (or wraps) a PersistenceFailure.
func IsPersistenceFailure(err error) bool {
	var p *PersistenceFailure
	return errors.As(err, &p)
}
