package pr

import "context"

// MockPublisher is a mock implementation of Publisher for testing.
// Unset funcs succeed and record the call.
type MockPublisher struct {
	CreateBranchFunc func(ctx context.Context, branch, base string) error
	CommitFilesFunc  func(ctx context.Context, branch, message string, files []FileChange) error
	CreatePRFunc     func(ctx context.Context, req Request) (*PullRequest, error)

	// Recorded calls.
	Branches []string
	Commits  []FileChange
	Requests []Request
}

// CreateBranch implements Publisher.
func (m *MockPublisher) CreateBranch(ctx context.Context, branch, base string) error {
	m.Branches = append(m.Branches, branch)
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(ctx, branch, base)
	}
	return nil
}

// CommitFiles implements Publisher.
func (m *MockPublisher) CommitFiles(ctx context.Context, branch, message string, files []FileChange) error {
	m.Commits = append(m.Commits, files...)
	if m.CommitFilesFunc != nil {
		return m.CommitFilesFunc(ctx, branch, message, files)
	}
	return nil
}

// CreatePR implements Publisher.
func (m *MockPublisher) CreatePR(ctx context.Context, req Request) (*PullRequest, error) {
	m.Requests = append(m.Requests, req)
	if m.CreatePRFunc != nil {
		return m.CreatePRFunc(ctx, req)
	}
	return &PullRequest{Number: 1, URL: "https://example.com/pr/1", Title: req.Title}, nil
}
