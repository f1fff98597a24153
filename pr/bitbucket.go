package pr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	relhttp "github.com/randalmurphal/reldocs/http"
)

// BitbucketConfig configures the Bitbucket publisher.
type BitbucketConfig struct {
	// BaseURL overrides the Bitbucket Cloud API URL, mostly for tests.
	BaseURL string

	Workspace string
	RepoSlug  string

	Username    string
	AppPassword string

	Timeout time.Duration
}

// Validate checks that required fields are present.
func (c *BitbucketConfig) Validate() error {
	if c.Workspace == "" || c.RepoSlug == "" {
		return fmt.Errorf("bitbucket publisher: workspace and repo slug are required")
	}
	if c.Username == "" || c.AppPassword == "" {
		return fmt.Errorf("bitbucket publisher: username and app password are required")
	}
	return nil
}

// BitbucketPublisher implements Publisher for Bitbucket docs repositories.
type BitbucketPublisher struct {
	cfg  *BitbucketConfig
	http *relhttp.Client
}

// NewBitbucketPublisher creates a Bitbucket publisher.
func NewBitbucketPublisher(cfg *BitbucketConfig) (*BitbucketPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.bitbucket.org/2.0"
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout == 0 {
		httpClient.Timeout = relhttp.DefaultTimeout
	}
	return &BitbucketPublisher{
		cfg: cfg,
		http: relhttp.NewClient(relhttp.Config{
			Client:  httpClient,
			BaseURL: baseURL,
			Service: "bitbucket",
			Auth: func(req *http.Request) {
				req.SetBasicAuth(cfg.Username, cfg.AppPassword)
			},
		}),
	}, nil
}

func (p *BitbucketPublisher) repoPath() string {
	return fmt.Sprintf("/repositories/%s/%s", p.cfg.Workspace, p.cfg.RepoSlug)
}

// CreateBranch creates branch off base.
func (p *BitbucketPublisher) CreateBranch(ctx context.Context, branch, base string) error {
	body := map[string]any{
		"name":   branch,
		"target": map[string]any{"hash": base},
	}
	err := p.http.Post(ctx, p.repoPath()+"/refs/branches", body, nil)
	if err != nil {
		var apiErr *relhttp.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest &&
			strings.Contains(apiErr.Message, "already exists") {
			return ErrBranchExists
		}
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// CommitFiles commits the file changes as a single commit on branch.
// The src endpoint takes file contents as form fields and deletions
// under the files key.
func (p *BitbucketPublisher) CommitFiles(ctx context.Context, branch, message string, files []FileChange) error {
	if len(files) == 0 {
		return ErrNoChanges
	}

	form := url.Values{}
	form.Set("branch", branch)
	form.Set("message", message)
	for _, f := range files {
		if f.Operation == "delete" {
			form.Add("files", f.Path)
			continue
		}
		form.Set(f.Path, f.Content)
	}

	if err := p.http.PostForm(ctx, p.repoPath()+"/src", form, nil); err != nil {
		return fmt.Errorf("commit files to %s: %w", branch, err)
	}
	return nil
}

type bitbucketPRResponse struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
}

// CreatePR opens a pull request for the branch.
// Bitbucket Cloud has no PR labels or assignees; those fields are folded
// into the description so reviewers still see them.
func (p *BitbucketPublisher) CreatePR(ctx context.Context, req Request) (*PullRequest, error) {
	target := req.TargetBranch
	if target == "" {
		target = "main"
	}

	description := req.Description
	if len(req.Labels) > 0 {
		description += "\n\nLabels: " + strings.Join(req.Labels, ", ")
	}
	if len(req.Assignees) > 0 {
		description += "\nAssignees: " + strings.Join(req.Assignees, ", ")
	}

	body := map[string]any{
		"title":       req.Title,
		"description": description,
		"source": map[string]any{
			"branch": map[string]any{"name": req.SourceBranch},
		},
		"destination": map[string]any{
			"branch": map[string]any{"name": target},
		},
	}

	var resp bitbucketPRResponse
	if err := p.http.Post(ctx, p.repoPath()+"/pullrequests", body, &resp); err != nil {
		var apiErr *relhttp.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create pull request: %w", err)
	}

	return &PullRequest{
		Number:       resp.ID,
		URL:          resp.Links.HTML.Href,
		Title:        resp.Title,
		SourceBranch: req.SourceBranch,
		TargetBranch: target,
	}, nil
}
