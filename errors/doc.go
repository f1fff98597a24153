// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors for common scenarios:
//   - ErrNotAuthenticated: A service rejected the configured credentials
//   - ErrSessionExpired: An auth token has expired
//   - ErrMissingCredentials: A required credential is not configured
//   - ErrConnectionFailed: A service is unreachable
//   - ErrPermissionDenied: Insufficient permissions
//   - ErrNotFound: A requested resource does not exist
//
// Example usage:
//
//	if err := client.SearchFixVersion(ctx, version); err != nil {
//	    return errors.WrapAuthError(err, "jira")
//	}
//
//	// Check error types
//	if errors.IsConnectionError(err) {
//	    // Handle connectivity problems
//	}
package errors
