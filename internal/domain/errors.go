package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when a mutation is attempted without a verified identity.
var ErrUnauthorized = errors.New("unauthorized: user is not signed in")

// FieldError names a single rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid input: %s", strings.Join(names, ", "))
}

// Has reports whether field is among the rejected ones.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ExternalAuthError means the session could not be verified, as opposed to there being none.
type ExternalAuthError struct {
	Err error
}

func (e *ExternalAuthError) Error() string {
	return fmt.Sprintf("verify session: %v", e.Err)
}

func (e *ExternalAuthError) Unwrap() error {
	return e.Err
}

// StoreWriteError wraps a persistence failure during a write.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// ForeignKeyError is returned when a post references an author that does not exist.
type ForeignKeyError struct {
	AuthorID string
	Err      error
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("author %q does not exist", e.AuthorID)
}

func (e *ForeignKeyError) Unwrap() error {
	return e.Err
}
