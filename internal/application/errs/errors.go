package errs

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrDataConflict       = errors.New("data conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Authentication errors, all of them end up as 401.
var (
	ErrUnauthorized       = errors.New("authorization header required")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrTokenMalformed     = errors.New("malformed token")
	ErrTokenSignature     = errors.New("invalid token signature")
	ErrTokenExpired       = errors.New("token expired")
)

// ErrInvalidOrderID is returned by repositories for identifiers
// the storage can't have issued.
var ErrInvalidOrderID = &ValidationError{Field: "id", Constraint: "malformed order id"}

// Checked in order, the first match wins.
var authErrors = []error{
	ErrUnauthorized,
	ErrInvalidCredentials,
	ErrTokenExpired,
	ErrTokenSignature,
	ErrTokenMalformed,
}

// AuthError returns the authentication error in err's tree, or nil.
func AuthError(err error) error {
	for _, authErr := range authErrors {
		if errors.Is(err, authErr) {
			return authErr
		}
	}
	return nil
}

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// ValidationError lets users know which field of the request violates which constraint.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRequest, e.Field, e.Constraint)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError is a shorthand for a ValidationError with formatted constraint.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Constraint: fmt.Sprintf(format, args...)}
}
