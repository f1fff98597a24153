package pr

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xanzy/go-gitlab"
)

// GitLabPublisher implements Publisher for GitLab docs repositories.
type GitLabPublisher struct {
	client    *gitlab.Client
	projectID string // Numeric ID or "namespace/project"
}

// NewGitLabPublisher creates a GitLab publisher.
// token is a personal access token. baseURL is the GitLab instance URL
// (empty for gitlab.com). projectID can be a numeric ID or a
// "namespace/project" path.
func NewGitLabPublisher(token, baseURL, projectID string) (*GitLabPublisher, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var client *gitlab.Client
	var err error
	if baseURL != "" {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	} else {
		client, err = gitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabPublisher{client: client, projectID: projectID}, nil
}

// CreateBranch creates branch off base.
func (p *GitLabPublisher) CreateBranch(ctx context.Context, branch, base string) error {
	_, resp, err := p.client.Branches.CreateBranch(p.projectID, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(branch),
		Ref:    gitlab.Ptr(base),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusBadRequest &&
			strings.Contains(err.Error(), "already exists") {
			return ErrBranchExists
		}
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// CommitFiles commits the file changes as a single commit on branch.
func (p *GitLabPublisher) CommitFiles(ctx context.Context, branch, message string, files []FileChange) error {
	if len(files) == 0 {
		return ErrNoChanges
	}

	actions := make([]*gitlab.CommitActionOptions, 0, len(files))
	for _, f := range files {
		var action gitlab.FileActionValue
		switch f.Operation {
		case "create":
			action = gitlab.FileCreate
		case "delete":
			action = gitlab.FileDelete
		default:
			action = gitlab.FileUpdate
		}
		opt := &gitlab.CommitActionOptions{
			Action:   gitlab.Ptr(action),
			FilePath: gitlab.Ptr(f.Path),
		}
		if action != gitlab.FileDelete {
			opt.Content = gitlab.Ptr(f.Content)
		}
		actions = append(actions, opt)
	}

	_, _, err := p.client.Commits.CreateCommit(p.projectID, &gitlab.CreateCommitOptions{
		Branch:        gitlab.Ptr(branch),
		CommitMessage: gitlab.Ptr(message),
		Actions:       actions,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create commit: %w", err)
	}
	return nil
}

// CreatePR opens a merge request for the branch.
func (p *GitLabPublisher) CreatePR(ctx context.Context, req Request) (*PullRequest, error) {
	target := req.TargetBranch
	if target == "" {
		target = "main"
	}

	mrOpts := &gitlab.CreateMergeRequestOptions{
		Title:        gitlab.Ptr(req.Title),
		Description:  gitlab.Ptr(req.Description),
		SourceBranch: gitlab.Ptr(req.SourceBranch),
		TargetBranch: gitlab.Ptr(target),
	}
	if len(req.Labels) > 0 {
		mrOpts.Labels = gitlab.Ptr(gitlab.LabelOptions(req.Labels))
	}
	if len(req.Assignees) > 0 {
		// GitLab wants user IDs; accept numeric assignees only.
		var ids []int
		for _, a := range req.Assignees {
			if id, err := strconv.Atoi(a); err == nil {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			mrOpts.AssigneeIDs = gitlab.Ptr(ids)
		}
	}

	mr, resp, err := p.client.MergeRequests.CreateMergeRequest(p.projectID, mrOpts, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create merge request: %w", err)
	}

	return &PullRequest{
		Number:       mr.IID,
		URL:          mr.WebURL,
		Title:        mr.Title,
		SourceBranch: req.SourceBranch,
		TargetBranch: target,
	}, nil
}
