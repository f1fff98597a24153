package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrNotAuthenticated, true},
		{"wrapped sentinel", fmt.Errorf("jira: %w", ErrSessionExpired), true},
		{"missing credentials", ErrMissingCredentials, true},
		{"401 in message", stderrors.New("jira API error (status 401)"), true},
		{"unauthorized", stderrors.New("Unauthorized"), true},
		{"unrelated", stderrors.New("page not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrConnectionFailed, true},
		{"refused", stderrors.New("dial tcp 10.0.0.1:443: connection refused"), true},
		{"no host", stderrors.New("no such host"), true},
		{"tls", stderrors.New("x509: certificate signed by unknown authority"), true},
		{"timeout", stderrors.New("context deadline exceeded"), true},
		{"unrelated", stderrors.New("bad request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrNotFound) {
		t.Error("sentinel should match")
	}
	if !IsNotFound(stderrors.New("confluence API error (status 404)")) {
		t.Error("404 message should match")
	}
	if IsNotFound(stderrors.New("timeout")) {
		t.Error("timeout should not match")
	}
}

func TestIsPermissionError(t *testing.T) {
	if !IsPermissionError(stderrors.New("403 Forbidden")) {
		t.Error("403 message should match")
	}
	if IsPermissionError(nil) {
		t.Error("nil should not match")
	}
}

func TestWrapAuthError(t *testing.T) {
	err := WrapAuthError(stderrors.New("bitbucket API error (status 401)"), "bitbucket")

	var cliErr *CLIError
	if !stderrors.As(err, &cliErr) {
		t.Fatalf("expected *CLIError, got %T", err)
	}
	if !stderrors.Is(err, ErrNotAuthenticated) {
		t.Error("should unwrap to ErrNotAuthenticated")
	}
	if !strings.Contains(cliErr.Message, "bitbucket") {
		t.Errorf("message should name the service: %q", cliErr.Message)
	}
	if !strings.Contains(cliErr.Suggestion, "RELDOCS_BITBUCKET_") {
		t.Errorf("suggestion should point at credentials config: %q", cliErr.Suggestion)
	}
}

func TestWrapAuthError_TokenExpired(t *testing.T) {
	err := WrapAuthError(stderrors.New("token expired"), "jira")
	if !stderrors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestWrapAuthError_PassesThroughUnrelated(t *testing.T) {
	orig := stderrors.New("bad gateway")
	if got := WrapAuthError(orig, "jira"); got != orig {
		t.Errorf("unrelated error should pass through, got %v", got)
	}
}

func TestWrapConnectionError(t *testing.T) {
	err := WrapConnectionError(
		stderrors.New("dial tcp: connection refused"),
		"https://jira.example.com",
	)
	if !stderrors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "https://jira.example.com") {
		t.Errorf("message should include the URL: %q", err.Error())
	}
}

func TestWrapConnectionError_TLSIncludesDetails(t *testing.T) {
	orig := stderrors.New("x509: certificate has expired")
	err := WrapConnectionError(orig, "https://wiki.example.com")

	var cliErr *CLIError
	if !stderrors.As(err, &cliErr) {
		t.Fatalf("expected *CLIError, got %T", err)
	}
	if cliErr.Details != orig.Error() {
		t.Errorf("Details = %q, want original error text", cliErr.Details)
	}
}

func TestNewMissingCredentialsError(t *testing.T) {
	err := NewMissingCredentialsError("confluence")
	if !stderrors.Is(err, ErrMissingCredentials) {
		t.Error("should unwrap to ErrMissingCredentials")
	}
	if !strings.Contains(err.Error(), "RELDOCS_CONFLUENCE_") {
		t.Errorf("suggestion should name env vars: %q", err.Error())
	}
}

type quietMessenger struct {
	DefaultMessenger
}

func (quietMessenger) AuthErrorMessage(service string) (string, string) {
	return "auth failed", ""
}

func TestWithMessenger(t *testing.T) {
	err := WrapAuthError(stderrors.New("401"), "jira", WithMessenger(quietMessenger{}))
	if err.Error() != "auth failed" {
		t.Errorf("custom messenger not used: %q", err.Error())
	}
}

func TestCLIErrorFormatting(t *testing.T) {
	e := &CLIError{
		Message:    "msg",
		Details:    "details",
		Suggestion: "do the thing",
	}
	want := "msg\ndetails\n\ndo the thing"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}
