package pr

import (
	"context"
	"fmt"
	"strings"
)

// FileChange is a single file operation to commit.
type FileChange struct {
	Path      string // Repository-relative path
	Operation string // "create", "update", or "delete"
	Content   string // New file content (empty for delete)
}

// Request configures pull request creation.
type Request struct {
	Title        string   // PR title (required)
	Description  string   // PR description (markdown)
	SourceBranch string   // Branch carrying the changes (required)
	TargetBranch string   // Target branch (default: "main")
	Labels       []string // Labels to apply
	Assignees    []string // Assignee usernames
}

// PullRequest describes a created pull request.
type PullRequest struct {
	Number       int
	URL          string
	Title        string
	SourceBranch string
	TargetBranch string
}

// Publisher is the interface for publishing documentation changes.
// Implementations exist for Bitbucket, GitHub, GitLab, and a local
// staging directory.
type Publisher interface {
	// CreateBranch creates branch off base on the docs repository.
	CreateBranch(ctx context.Context, branch, base string) error

	// CommitFiles commits the given file changes onto branch.
	CommitFiles(ctx context.Context, branch, message string, files []FileChange) error

	// CreatePR opens a pull request for the branch.
	CreatePR(ctx context.Context, req Request) (*PullRequest, error)
}

// DetectPublisher guesses the publisher kind from a repository URL.
func DetectPublisher(repoURL string) (string, error) {
	repoURL = strings.ToLower(repoURL)

	if strings.Contains(repoURL, "github.com") {
		return "github", nil
	}
	if strings.Contains(repoURL, "gitlab") {
		return "gitlab", nil
	}
	if strings.Contains(repoURL, "bitbucket") {
		return "bitbucket", nil
	}

	return "", ErrUnknownPublisher
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	// SSH URLs: git@github.com:owner/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		parts := strings.Split(remoteURL, ":")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid SSH URL format")
		}
		path := strings.TrimSuffix(parts[1], ".git")
		pathParts := strings.Split(path, "/")
		if len(pathParts) != 2 {
			return "", "", fmt.Errorf("invalid repository path")
		}
		return pathParts[0], pathParts[1], nil
	}

	// HTTPS URLs: https://github.com/owner/repo.git
	remoteURL = strings.TrimPrefix(remoteURL, "https://")
	remoteURL = strings.TrimPrefix(remoteURL, "http://")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	parts := strings.Split(remoteURL, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("invalid URL format")
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}
