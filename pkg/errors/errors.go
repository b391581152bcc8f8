// ================== pkg/errors/errors.go =================
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicate         = errors.New("resource already exists")
	ErrConflict          = errors.New("resource was modified concurrently")
	ErrValidation        = errors.New("validation failed")
	ErrAuthentication    = errors.New("authentication failed")
	ErrAuthorization     = errors.New("not authorized")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrIdentityService   = errors.New("identity service error")
)

// ValidationError reports malformed caller input. Never retried.
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

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation builds a ValidationError for field.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthenticationError reports rejected credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return ErrAuthentication.Error()
	}
	return e.Message
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// AuthorizationError reports insufficient privilege. The message must not
// describe the resource that was targeted.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return ErrAuthorization.Error()
	}
	return e.Message
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrAuthorization }

// IllegalTransitionError reports a status change outside the transition table.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// IdentityServiceError reports a failed call to the remote identity service.
// Message carries the service-provided text when there was one.
type IdentityServiceError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *IdentityServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("identity service: %v", e.Err)
	}
	return ErrIdentityService.Error()
}

func (e *IdentityServiceError) Is(target error) bool { return target == ErrIdentityService }

func (e *IdentityServiceError) Unwrap() error { return e.Err }
