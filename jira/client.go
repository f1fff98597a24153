package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	relhttp "github.com/randalmurphal/reldocs/http"
)

// searchPageSize is the page size used for JQL searches.
const searchPageSize = 100

// Client provides access to the Jira REST API.
type Client struct {
	cfg  *Config
	http *relhttp.Client
}

// NewClient creates a new Jira client.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout == 0 {
		httpClient.Timeout = relhttp.DefaultTimeout
	}

	return &Client{
		cfg: cfg,
		http: relhttp.NewClient(relhttp.Config{
			Client:  httpClient,
			BaseURL: strings.TrimSuffix(cfg.URL, "/"),
			Service: "jira",
			Auth: func(req *http.Request) {
				req.SetBasicAuth(cfg.Email, cfg.Token)
			},
		}),
	}, nil
}

// SearchFixVersion returns the issues whose fix version matches the release
// version, highest priority first.
func (c *Client) SearchFixVersion(ctx context.Context, version string) ([]Issue, error) {
	jql := fmt.Sprintf("fixVersion = %s ORDER BY priority DESC, updated DESC", quoteJQL(version))
	return c.search(ctx, jql)
}

// SearchBranch returns issues that reference the release branch, used as a
// fallback when no fix version is maintained.
func (c *Client) SearchBranch(ctx context.Context, branch string) ([]Issue, error) {
	jql := fmt.Sprintf("text ~ %s ORDER BY updated DESC", quoteJQL(branch))
	return c.search(ctx, jql)
}

// search runs a JQL query, following pagination.
func (c *Client) search(ctx context.Context, jql string) ([]Issue, error) {
	project := c.cfg.Project
	if project != "" {
		jql = fmt.Sprintf("project = %s AND (%s)", quoteJQL(project), jql)
	}

	wire, err := relhttp.CollectPages(ctx, c.cfg.MaxResults,
		func(ctx context.Context, page int) ([]wireIssue, bool, error) {
			path := fmt.Sprintf("/rest/api/2/search?jql=%s&startAt=%d&maxResults=%d",
				url.QueryEscape(jql), page*searchPageSize, searchPageSize)
			var resp searchResponse
			if err := c.http.Get(ctx, path, &resp); err != nil {
				return nil, false, err
			}
			next := resp.StartAt + len(resp.Issues)
			return resp.Issues, len(resp.Issues) > 0 && next < resp.Total, nil
		})
	if err != nil {
		return nil, fmt.Errorf("jira search %q: %w", jql, err)
	}

	issues := make([]Issue, 0, len(wire))
	for _, w := range wire {
		issues = append(issues, toIssue(w))
	}
	return issues, nil
}

// quoteJQL wraps a value in JQL double quotes, escaping embedded quotes.
func quoteJQL(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
