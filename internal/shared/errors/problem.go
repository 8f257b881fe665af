// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Apurer/storefront-api/internal/shared/fault"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	if p.Extensions == nil {
		p.Extensions = make(map[string]any)
	}
	p.Extensions[key] = value
	return p
}

// Common problem types as URI references.
const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeBadRequest   = "/problems/bad-request"
	TypeIntegrity    = "/problems/integrity-error"
	TypeUnavailable  = "/problems/dependency-unavailable"
)

// Pre-defined problem templates for common scenarios.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrValidation indicates the request failed validation.
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrConflict indicates a conflict with the current state.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}

	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}

	// ErrForbidden indicates the action is not allowed.
	ErrForbidden = ProblemDetail{
		Type:   TypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
	}

	// ErrIntegrity indicates a payload whose signature or amount did not verify.
	ErrIntegrity = ProblemDetail{
		Type:   TypeIntegrity,
		Title:  "Integrity Check Failed",
		Status: http.StatusBadRequest,
	}

	// ErrUnavailable indicates a collaborator (database, mail, gateway) failed.
	ErrUnavailable = ProblemDetail{
		Type:   TypeUnavailable,
		Title:  "Dependency Unavailable",
		Status: http.StatusServiceUnavailable,
	}
)

// FromError maps an error tagged with a fault kind to its problem template.
// Dependency failures hide the underlying cause from the client.
func FromError(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	switch fault.Kind(err) {
	case fault.ErrValidation:
		return ErrValidation.WithDetail(err.Error())
	case fault.ErrNotFound:
		return ErrNotFound.WithDetail(err.Error())
	case fault.ErrUnauthorized:
		return ErrUnauthorized.WithDetail(err.Error())
	case fault.ErrForbidden:
		return ErrForbidden.WithDetail(err.Error())
	case fault.ErrIntegrity:
		return ErrIntegrity.WithDetail(err.Error())
	case fault.ErrConflict:
		return ErrConflict.WithDetail(err.Error())
	case fault.ErrDependency:
		return ErrUnavailable.WithDetail("a downstream dependency failed, retry later")
	default:
		return ErrInternal
	}
}

// NewValidationProblem reports request fields that failed validation, keyed by
// their JSON name.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.
		WithDetail("request body failed validation").
		WithExtension("fields", fieldErrors)
}
