package service

import (
	"errors"
	"fmt"
)

// ValidationError is raised before any I/O; the caller fixes its input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrNotAuthenticated is returned by every authenticated operation when no
// session token is held. No request is issued.
var ErrNotAuthenticated = &NotAuthenticatedError{}

type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string {
	return "not authenticated: please login again"
}

// RemoteError is the common shape of server-rejected operations: the HTTP
// status plus the server's own text when it sent any.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

type AuthError struct{ RemoteError }

type RegistrationError struct{ RemoteError }

type FetchError struct{ RemoteError }

type UploadError struct{ RemoteError }

type DownloadError struct{ RemoteError }

type RatingSubmitError struct{ RemoteError }

type AccessDeniedError struct{ RemoteError }

// SessionExpiredError is only built through expireSession, which clears the
// session as part of constructing it.
type SessionExpiredError struct {
	Op string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("%s: session expired, please login again", e.Op)
}

// NetworkError is a transport failure, distinct from an HTTP error status.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DataIntegrityError marks a backend payload that cannot be normalized into
// a canonical entity, e.g. a teammate without any identifier field.
type DataIntegrityError struct {
	Entity string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity error: %s: %s", e.Entity, e.Reason)
}

func remote(op string, status int, body, fallback string) RemoteError {
	msg := body
	if msg == "" {
		msg = fallback
	}
	return RemoteError{Op: op, Status: status, Message: msg}
}

// Remote exposes the embedded RemoteError of server-rejected operations.
func (e *RemoteError) Remote() *RemoteError {
	return e
}

// AsRemote finds the RemoteError behind any of the server-rejected error
// types.
func AsRemote(err error) (*RemoteError, bool) {
	var rc interface{ Remote() *RemoteError }
	if errors.As(err, &rc) {
		return rc.Remote(), true
	}
	return nil, false
}
