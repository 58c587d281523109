// Package domain defines the entity contract, demo entities, and the error
// taxonomy shared by the mapper layer and its callers.
package domain

import "fmt"

// NotFoundError indicates that a lookup by identifier matched no row.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StorageError is the single error kind surfaced by mapper finders when the
// underlying connection fails. Message and Code are copied from the
// transport error, which stays reachable through Unwrap.
type StorageError struct {
	Message string
	Code    int
	Err     error
}

func (e *StorageError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("storage error (code %d): %s", e.Code, e.Message)
	}
	return "storage error: " + e.Message
}

func (e *StorageError) Unwrap() error { return e.Err }

// MappingError reports rows that do not satisfy the entity metadata: a mapped
// column absent from the projection, or a value that cannot be coerced to the
// field type. It signals a programming error and is never retried.
type MappingError struct {
	Table   string
	Column  string
	Message string
}

func (e *MappingError) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("mapping %s.%s: %s", e.Table, e.Column, e.Message)
	case e.Column != "":
		return fmt.Sprintf("mapping column %s: %s", e.Column, e.Message)
	default:
		return "mapping: " + e.Message
	}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrMapping creates a MappingError for the given column with a formatted message.
func ErrMapping(column string, format string, args ...interface{}) *MappingError {
	return &MappingError{Column: column, Message: fmt.Sprintf(format, args...)}
}
