package jira

import (
	"fmt"
	"time"
)

// Config holds the configuration for the Jira client.
type Config struct {
	// URL is the base URL of the Jira instance,
	// e.g. https://your-domain.atlassian.net.
	URL string

	// Email and Token authenticate against Jira Cloud (basic auth with an
	// API token).
	Email string
	Token string

	// Project limits searches to one project key. Empty searches all
	// projects the credentials can see.
	Project string

	// Timeout is the per-request timeout. Zero uses the shared default.
	Timeout time.Duration

	// MaxResults caps how many issues a search returns. Zero means no cap.
	MaxResults int
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("jira: URL is required")
	}
	if c.Email == "" || c.Token == "" {
		return fmt.Errorf("jira: email and API token are required")
	}
	return nil
}
