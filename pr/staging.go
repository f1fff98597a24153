package pr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StagingPublisher writes everything to a local directory instead of a
// remote repository. It backs dry runs: the planned branch, files, and PR
// description all land under Dir so a human can inspect what would have
// been published.
type StagingPublisher struct {
	// Dir is the staging root. Each branch gets a subdirectory.
	Dir string
}

// NewStagingPublisher creates a staging publisher rooted at dir.
func NewStagingPublisher(dir string) (*StagingPublisher, error) {
	if dir == "" {
		return nil, fmt.Errorf("staging directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &StagingPublisher{Dir: dir}, nil
}

func (p *StagingPublisher) branchDir(branch string) string {
	// Branch names contain slashes; keep them as nested directories.
	return filepath.Join(p.Dir, filepath.FromSlash(branch))
}

// CreateBranch creates the staging subdirectory for the branch.
func (p *StagingPublisher) CreateBranch(ctx context.Context, branch, base string) error {
	dir := p.branchDir(branch)
	if _, err := os.Stat(dir); err == nil {
		return ErrBranchExists
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging branch dir: %w", err)
	}
	return nil
}

// CommitFiles writes each file change under the branch directory.
func (p *StagingPublisher) CommitFiles(ctx context.Context, branch, message string, files []FileChange) error {
	if len(files) == 0 {
		return ErrNoChanges
	}

	dir := p.branchDir(branch)
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if f.Operation == "delete" {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("stage delete of %s: %w", f.Path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("stage %s: %w", f.Path, err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", f.Path, err)
		}
	}

	commitMsg := filepath.Join(dir, "COMMIT_MESSAGE.txt")
	if err := os.WriteFile(commitMsg, []byte(message+"\n"), 0o644); err != nil {
		return fmt.Errorf("stage commit message: %w", err)
	}
	return nil
}

// CreatePR writes the PR description to the branch directory and returns a
// file URL pointing to it. The PR number is always 0 for staged runs.
func (p *StagingPublisher) CreatePR(ctx context.Context, req Request) (*PullRequest, error) {
	dir := p.branchDir(req.SourceBranch)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)
	b.WriteString(req.Description)
	b.WriteString("\n")
	if len(req.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabels: %s\n", strings.Join(req.Labels, ", "))
	}
	if len(req.Assignees) > 0 {
		fmt.Fprintf(&b, "Assignees: %s\n", strings.Join(req.Assignees, ", "))
	}

	path := filepath.Join(dir, "PULL_REQUEST.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("stage pull request: %w", err)
	}

	target := req.TargetBranch
	if target == "" {
		target = "main"
	}
	return &PullRequest{
		Number:       0,
		URL:          "file://" + path,
		Title:        req.Title,
		SourceBranch: req.SourceBranch,
		TargetBranch: target,
	}, nil
}
