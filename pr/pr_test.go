package pr

import (
	"errors"
	"testing"
)

func TestDetectPublisher(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/acme/docs.git", "github", false},
		{"git@github.com:acme/docs.git", "github", false},
		{"https://gitlab.com/acme/docs.git", "gitlab", false},
		{"https://gitlab.internal.acme.io/acme/docs.git", "gitlab", false},
		{"https://bitbucket.org/acme/docs.git", "bitbucket", false},
		{"https://example.com/acme/docs.git", "", true},
	}
	for _, tt := range tests {
		got, err := DetectPublisher(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectPublisher(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectPublisher(%q) = %q, want %q", tt.url, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownPublisher) {
			t.Errorf("DetectPublisher(%q) error = %v, want ErrUnknownPublisher", tt.url, err)
		}
	}
}

func TestParseRepoFromURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/acme/docs.git", "acme", "docs", false},
		{"https://github.com/acme/docs", "acme", "docs", false},
		{"git@github.com:acme/docs.git", "acme", "docs", false},
		{"git@bitbucket.org:acme/product-docs.git", "acme", "product-docs", false},
		{"not-a-url", "", "", true},
		{"git@github.com:acme/docs/extra.git", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRepoFromURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepoFromURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("ParseRepoFromURL(%q) = %q/%q, want %q/%q", tt.url, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}

func TestNewGitHubPublisher_Validation(t *testing.T) {
	if _, err := NewGitHubPublisher("", "acme", "docs"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewGitHubPublisher("tok", "", "docs"); err == nil {
		t.Error("expected error for missing owner")
	}
	if _, err := NewGitHubPublisher("tok", "acme", "docs"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewGitLabPublisher_Validation(t *testing.T) {
	if _, err := NewGitLabPublisher("", "", "acme/docs"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewGitLabPublisher("tok", "", ""); err == nil {
		t.Error("expected error for missing project ID")
	}
	if _, err := NewGitLabPublisher("tok", "", "acme/docs"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
