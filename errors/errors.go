package errors

import "errors"

// Common errors surfaced by the reldocs CLI with actionable guidance.
var (
	// ErrNotAuthenticated indicates a service rejected the configured credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates an auth token has expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrMissingCredentials indicates a required credential is not configured.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrConnectionFailed indicates a service is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPermissionDenied indicates insufficient permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
