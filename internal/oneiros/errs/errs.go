// Package errs defines the error taxonomy from spec §7: a small set of
// wrapper types the HTTP collaborator maps to status codes, and that
// store/projection code returns instead of ad-hoc fmt.Errorf strings
// wherever the caller needs to branch on the kind of failure.
package errs

import "fmt"

// StoreIOError wraps a failure from the backing store (disk, SQLite).
type StoreIOError struct {
	Cause error
}

func (e *StoreIOError) Error() string { return fmt.Sprintf("store io: %v", e.Cause) }
func (e *StoreIOError) Unwrap() error { return e.Cause }

// SerializationError wraps a failure to encode or decode an event
// payload or entity.
type SerializationError struct {
	Context string
	Cause   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization (%s): %v", e.Context, e.Cause)
}
func (e *SerializationError) Unwrap() error { return e.Cause }

// ProjectionError wraps a named projection's apply failure. The event
// row is already written; the log is ahead of the view.
type ProjectionError struct {
	Name  string
	Cause error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection %q failed: %v", e.Name, e.Cause)
}
func (e *ProjectionError) Unwrap() error { return e.Cause }

// NotFoundError reports a lookup against a nonexistent entity. Not an
// exceptional condition — callers are expected to check for it.
type NotFoundError struct {
	Kind       string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Identifier)
}

// ConflictError reports a create that would violate a uniqueness
// constraint.
type ConflictError struct {
	Kind string
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Name)
}

// NarrowingError reports a failed label check while narrowing an
// erased Key/Link to a domain-typed one.
type NarrowingError struct {
	Expected string
	Actual   string
}

func (e *NarrowingError) Error() string {
	return fmt.Sprintf("narrowing failed: expected %q, got %q", e.Expected, e.Actual)
}

// MalformedLinkError, MalformedRefError, MalformedIDError report parse
// failures on external input.

type MalformedLinkError struct{ Cause error }

func (e *MalformedLinkError) Error() string { return fmt.Sprintf("malformed link: %v", e.Cause) }
func (e *MalformedLinkError) Unwrap() error { return e.Cause }

type MalformedRefError struct{ Cause error }

func (e *MalformedRefError) Error() string { return fmt.Sprintf("malformed ref: %v", e.Cause) }
func (e *MalformedRefError) Unwrap() error { return e.Cause }

type MalformedIDError struct{ Cause error }

func (e *MalformedIDError) Error() string { return fmt.Sprintf("malformed id: %v", e.Cause) }
func (e *MalformedIDError) Unwrap() error { return e.Cause }
