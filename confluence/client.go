package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	relhttp "github.com/randalmurphal/reldocs/http"
)

// pageExpand lists the page properties fetched with every search.
const pageExpand = "body.storage,version,space,history,metadata.labels,children.attachment"

// Config holds the configuration for the Confluence client.
type Config struct {
	// URL is the base URL of the Confluence instance,
	// e.g. https://your-domain.atlassian.net/wiki.
	URL string

	// Email and Token authenticate against Confluence Cloud.
	Email string
	Token string

	// SpaceKey is the documentation space searched for pages.
	// Defaults to "DOCS".
	SpaceKey string

	Timeout time.Duration
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("confluence: URL is required")
	}
	if c.Email == "" || c.Token == "" {
		return fmt.Errorf("confluence: email and API token are required")
	}
	return nil
}

func (c *Config) space() string {
	if c.SpaceKey == "" {
		return "DOCS"
	}
	return c.SpaceKey
}

// Client provides access to the Confluence REST API.
type Client struct {
	cfg  *Config
	http *relhttp.Client
}

// NewClient creates a new Confluence client.
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
			Service: "confluence",
			Auth: func(req *http.Request) {
				req.SetBasicAuth(cfg.Email, cfg.Token)
			},
		}),
	}, nil
}

// ReleaseNotesPages returns pages in the docs space whose title marks them
// as release notes or changelog, newest first.
func (c *Client) ReleaseNotesPages(ctx context.Context) ([]Page, error) {
	cql := fmt.Sprintf(`space = "%s" AND type = page AND (title ~ "release notes" OR title ~ "changelog") ORDER BY lastmodified DESC`,
		c.cfg.space())
	return c.searchCQL(ctx, cql)
}

// PagesByLabels returns pages in the docs space carrying any of the given
// labels. Duplicate pages across labels are returned once.
func (c *Client) PagesByLabels(ctx context.Context, labels []string) ([]Page, error) {
	seen := make(map[string]bool)
	var pages []Page
	for _, label := range labels {
		cql := fmt.Sprintf(`space = "%s" AND type = page AND label = "%s"`,
			c.cfg.space(), strings.ReplaceAll(label, `"`, ""))
		found, err := c.searchCQL(ctx, cql)
		if err != nil {
			return pages, err
		}
		for _, p := range found {
			if !seen[p.ID] {
				seen[p.ID] = true
				pages = append(pages, p)
			}
		}
	}
	return pages, nil
}

func (c *Client) searchCQL(ctx context.Context, cql string) ([]Page, error) {
	path := fmt.Sprintf("/rest/api/content/search?cql=%s&expand=%s&limit=50",
		url.QueryEscape(cql), url.QueryEscape(pageExpand))
	var resp searchResponse
	if err := c.http.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("confluence search: %w", err)
	}
	pages := make([]Page, 0, len(resp.Results))
	for _, w := range resp.Results {
		pages = append(pages, toPage(w))
	}
	return pages, nil
}
