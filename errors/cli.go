package errors

import (
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// The service parameter names the system that failed (jira, bitbucket,
// confluence, or the docs repository host).
type ErrorMessenger interface {
	// AuthErrorMessage returns the message and suggestion for rejected credentials.
	AuthErrorMessage(service string) (message, suggestion string)

	// SessionExpiredMessage returns the message and suggestion for expired tokens.
	SessionExpiredMessage(service string) (message, suggestion string)

	// PermissionDeniedMessage returns the message and suggestion for permission errors.
	PermissionDeniedMessage(service string) (message, suggestion string)

	// MissingCredentialsMessage returns the message and suggestion for
	// a service with no configured credentials.
	MissingCredentialsMessage(service string) (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	ConnectionErrorMessage(serviceURL string) (message, suggestion string)

	// TLSErrorMessage returns the message and suggestion for TLS/certificate errors.
	TLSErrorMessage(serviceURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serviceURL string) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AuthErrorMessage(service string) (string, string) {
	return fmt.Sprintf("%s rejected the configured credentials.", service),
		fmt.Sprintf("Check the RELDOCS_%s_* credentials in your environment or config file.", strings.ToUpper(service))
}

func (m DefaultMessenger) SessionExpiredMessage(service string) (string, string) {
	return fmt.Sprintf("The %s token has expired.", service),
		"Generate a new token and update your configuration."
}

func (m DefaultMessenger) PermissionDeniedMessage(service string) (string, string) {
	return fmt.Sprintf("You don't have permission to perform this action on %s.", service),
		"Contact your administrator for access."
}

func (m DefaultMessenger) MissingCredentialsMessage(service string) (string, string) {
	return fmt.Sprintf("No credentials configured for %s.", service),
		fmt.Sprintf("Set the RELDOCS_%s_* environment variables or add them to your config file.", strings.ToUpper(service))
}

func (m DefaultMessenger) ConnectionErrorMessage(serviceURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s", serviceURL),
		"Check that:\n  - The service is reachable from this machine\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TLSErrorMessage(serviceURL string) (string, string) {
	return fmt.Sprintf("TLS/certificate error connecting to %s", serviceURL),
		"Check that the service certificate is valid."
}

func (m DefaultMessenger) TimeoutErrorMessage(serviceURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serviceURL),
		"The service may be overloaded or unreachable.\nTry again in a moment."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapAuthError wraps authentication-related errors with helpful guidance.
// Errors that don't look auth-related pass through unchanged.
func WrapAuthError(err error, service string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	// Token expiration
	if strings.Contains(errStr, "token") && (strings.Contains(errStr, "expired") || strings.Contains(errStr, "invalid")) {
		msg, suggestion := messenger.SessionExpiredMessage(service)
		return &CLIError{
			Err:        ErrSessionExpired,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "unauthenticated") || strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "401") {
		msg, suggestion := messenger.AuthErrorMessage(service)
		return &CLIError{
			Err:        ErrNotAuthenticated,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "403") {
		msg, suggestion := messenger.PermissionDeniedMessage(service)
		return &CLIError{
			Err:        ErrPermissionDenied,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serviceURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp") {
		msg, suggestion := messenger.ConnectionErrorMessage(serviceURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") {
		msg, suggestion := messenger.TLSErrorMessage(serviceURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serviceURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}

// NewMissingCredentialsError creates an error for a service with no
// configured credentials.
func NewMissingCredentialsError(service string, opts ...Option) error {
	messenger := getMessenger(opts)
	msg, suggestion := messenger.MissingCredentialsMessage(service)
	return &CLIError{
		Err:        ErrMissingCredentials,
		Message:    msg,
		Suggestion: suggestion,
	}
}
