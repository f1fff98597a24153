package pr

import "errors"

// Publisher errors
var (
	// ErrNoPublisher indicates no publisher is configured.
	ErrNoPublisher = errors.New("no publisher configured")

	// ErrUnknownPublisher indicates the docs repo URL matches no known host.
	ErrUnknownPublisher = errors.New("unknown publisher for repository URL")

	// ErrBranchExists indicates the docs branch already exists.
	ErrBranchExists = errors.New("branch already exists")

	// ErrExists indicates a PR already exists for the branch.
	ErrExists = errors.New("pull request already exists for this branch")

	// ErrNoChanges indicates there are no file changes to commit.
	ErrNoChanges = errors.New("no file changes to commit")
)
