// Package shared contains sentinel errors used across familystock components.
// Callers should match these values with errors.Is.
package shared

import "errors"

var (

	// common errors
	ErrorNotFound = errors.New("not found")

	// auth-specific errors
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrTokenExpired             = errors.New("token expired")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrSignUpFailed             = errors.New("failed to create account")
	ErrEmailConfirmationNeeded  = errors.New("email confirmation required")

	// remote-specific errors
	ErrServerUnavailable = errors.New("server unavailable")
	ErrEmptyResponse     = errors.New("empty response from server")

	// offline queue errors
	ErrEntityNotFound = errors.New("entity not found")
)
