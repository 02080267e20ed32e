package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrIntegrity  = errors.New("integrity violation")
)

// ValidationError reports a missing or invalid field on a create or update.
type ValidationError struct {
	Entity EntityType
	ID     string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	subject := string(e.Entity)
	if e.ID != "" {
		subject = fmt.Sprintf("%s %q", e.Entity, e.ID)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", subject, e.Reason)
	}
	return fmt.Sprintf("%s: field %s %s", subject, e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an update, delete, or lookup against a missing id.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is matches ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IntegrityError reports a reference to a foreign entity that does not exist
// or cannot accept the reference. It also matches ErrValidation since callers
// treat a bad reference as invalid input.
type IntegrityError struct {
	Entity EntityType
	ID     string
	Ref    EntityType
	RefID  string
	Reason string
}

func (e IntegrityError) Error() string {
	subject := string(e.Entity)
	if e.ID != "" {
		subject = fmt.Sprintf("%s %q", e.Entity, e.ID)
	}
	reason := e.Reason
	if reason == "" {
		reason = "not found"
	}
	return fmt.Sprintf("%s references %s %q: %s", subject, e.Ref, e.RefID, reason)
}

// Is matches ErrIntegrity and ErrValidation.
func (e IntegrityError) Is(target error) bool {
	return target == ErrIntegrity || target == ErrValidation
}
