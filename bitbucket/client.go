package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	relhttp "github.com/randalmurphal/reldocs/http"
)

// DefaultBaseURL is the Bitbucket Cloud API root.
const DefaultBaseURL = "https://api.bitbucket.org/2.0"

const pageSize = 100

// Config holds the configuration for the Bitbucket client.
type Config struct {
	// BaseURL overrides the API root, mainly for tests.
	BaseURL string

	// Workspace and RepoSlug identify the repository.
	Workspace string
	RepoSlug  string

	// Username and AppPassword authenticate via basic auth.
	Username    string
	AppPassword string

	Timeout time.Duration
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Workspace == "" || c.RepoSlug == "" {
		return fmt.Errorf("bitbucket: workspace and repo slug are required")
	}
	if c.Username == "" || c.AppPassword == "" {
		return fmt.Errorf("bitbucket: username and app password are required")
	}
	return nil
}

// Client provides access to the Bitbucket Cloud REST API.
type Client struct {
	cfg  *Config
	http *relhttp.Client
	repo string // "/repositories/{workspace}/{slug}"
}

// NewClient creates a new Bitbucket client.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout == 0 {
		httpClient.Timeout = relhttp.DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		repo: fmt.Sprintf("/repositories/%s/%s", cfg.Workspace, cfg.RepoSlug),
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

// PullRequestsInto returns pull requests targeting the given branch, with
// changed-file paths populated from each PR's diffstat.
func (c *Client) PullRequestsInto(ctx context.Context, branch string) ([]PullRequest, error) {
	query := fmt.Sprintf(`destination.branch.name = "%s"`, branch)
	wire, err := relhttp.CollectPages(ctx, 0,
		func(ctx context.Context, page int) ([]wirePR, bool, error) {
			path := fmt.Sprintf("%s/pullrequests?q=%s&pagelen=%d&page=%d",
				c.repo, url.QueryEscape(query), pageSize, page+1)
			var resp pagedResponse[wirePR]
			if err := c.http.Get(ctx, path, &resp); err != nil {
				return nil, false, err
			}
			return resp.Values, resp.Next != "", nil
		})
	if err != nil {
		return nil, fmt.Errorf("bitbucket: pull requests into %q: %w", branch, err)
	}

	prs := make([]PullRequest, 0, len(wire))
	for _, w := range wire {
		pr := toPullRequest(w)
		files, err := c.pullRequestFiles(ctx, pr.ID)
		if err != nil {
			return nil, fmt.Errorf("bitbucket: diffstat for PR %d: %w", pr.ID, err)
		}
		pr.ChangedFiles = files
		prs = append(prs, pr)
	}
	return prs, nil
}

// CommitsOn returns commits on the given branch, excluding everything
// reachable from baseTag when one is provided.
func (c *Client) CommitsOn(ctx context.Context, branch, baseTag string) ([]Commit, error) {
	exclude := ""
	if baseTag != "" {
		exclude = "&exclude=" + url.QueryEscape("refs/tags/"+baseTag)
	}
	wire, err := relhttp.CollectPages(ctx, 0,
		func(ctx context.Context, page int) ([]wireCommit, bool, error) {
			path := fmt.Sprintf("%s/commits/%s?pagelen=%d&page=%d%s",
				c.repo, url.PathEscape(branch), pageSize, page+1, exclude)
			var resp pagedResponse[wireCommit]
			if err := c.http.Get(ctx, path, &resp); err != nil {
				return nil, false, err
			}
			return resp.Values, resp.Next != "", nil
		})
	if err != nil {
		return nil, fmt.Errorf("bitbucket: commits on %q: %w", branch, err)
	}

	commits := make([]Commit, 0, len(wire))
	for _, w := range wire {
		commits = append(commits, toCommit(w))
	}
	return commits, nil
}

// pullRequestFiles returns the changed file paths of one pull request.
func (c *Client) pullRequestFiles(ctx context.Context, id int) ([]string, error) {
	stats, err := relhttp.CollectPages(ctx, 0,
		func(ctx context.Context, page int) ([]wireDiffStat, bool, error) {
			path := fmt.Sprintf("%s/pullrequests/%d/diffstat?pagelen=%d&page=%d",
				c.repo, id, pageSize, page+1)
			var resp pagedResponse[wireDiffStat]
			if err := c.http.Get(ctx, path, &resp); err != nil {
				return nil, false, err
			}
			return resp.Values, resp.Next != "", nil
		})
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(stats))
	for _, s := range stats {
		if p := diffPath(s); p != "" {
			files = append(files, p)
		}
	}
	return files, nil
}
