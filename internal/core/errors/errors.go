// Package errors provides centralized error definitions for the application.
// Errors are organized by failure kind so every layer reports the same sentinel.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Typed errors (*Error): Use when the caller needs the reported details
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import (
	"errors"
	"fmt"
)

// Input errors.
var (
	// ErrInputFormat indicates a user supplied value (month, date) does not parse.
	ErrInputFormat = errors.New("invalid input format")
)

// Remote service errors.
var (
	// ErrTransport indicates the request could not be performed at all.
	ErrTransport = errors.New("transport error")

	// ErrAPI indicates the service answered with an error envelope or status.
	ErrAPI = errors.New("api error")

	// ErrDataShape indicates a response did not have the expected structure.
	ErrDataShape = errors.New("unexpected response shape")
)

// Identity errors.
var (
	// ErrIdentityNotFound indicates a username could not be resolved to a handle.
	ErrIdentityNotFound = errors.New("identity not found")
)

// APIError carries the error pair reported by a remote method.
type APIError struct {
	Method string
	Code   string
	Info   string
	Status int
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" || e.Info != "":
		return fmt.Sprintf("%s: %s: %s", e.Method, e.Code, e.Info)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Method, e.Status)
	default:
		return e.Method + ": empty result"
	}
}

// Unwrap lets errors.Is match ErrAPI.
func (e *APIError) Unwrap() error {
	return ErrAPI
}

// IdentityNotFoundError is returned when a username lookup has no usable match.
type IdentityNotFoundError struct {
	Username string
	Code     string
	Info     string
}

func (e *IdentityNotFoundError) Error() string {
	if e.Code == "" && e.Info == "" {
		return fmt.Sprintf("user %q: %v", e.Username, ErrIdentityNotFound)
	}

	return fmt.Sprintf("user %q: %v: %s (%s)", e.Username, ErrIdentityNotFound, e.Info, e.Code)
}

// Unwrap lets errors.Is match ErrIdentityNotFound.
func (e *IdentityNotFoundError) Unwrap() error {
	return ErrIdentityNotFound
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
