// Package fault defines the error kinds shared by every bounded context.
//
// Domain and adapter errors are wrapped with one of the kinds below so the
// transport layer can map them to a status code without knowing the domain.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing request fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an ownership or role mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrIntegrity marks a payload whose authenticity could not be proven.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrConflict marks a request that contradicts current state.
	ErrConflict = errors.New("conflict")
	// ErrDependency marks a failing collaborator (database, mail, gateway).
	ErrDependency = errors.New("dependency failure")
)

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Dependency wraps a collaborator failure with the operation that triggered it.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDependency) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}

// Kind returns the first kind err carries, or nil when it carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrForbidden, ErrIntegrity, ErrConflict, ErrDependency} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsRetryable reports whether the caller may retry the operation later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDependency)
}
