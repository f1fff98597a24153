// Package testutil provides fixtures and fake collaborators for testing.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/jira"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadFixtureString loads a fixture file as a string.
func LoadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(LoadFixture(t, path))
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	data := LoadFixture(t, path)

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}

	return result
}

var fixtureTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

// SampleIssues returns a small set of issues covering the categories the
// analysis cares about: a feature, a bug fix, and a breaking change.
func SampleIssues() []jira.Issue {
	return []jira.Issue{
		{
			Key:        "REL-101",
			Summary:    "Add SSO login",
			Type:       "Story",
			Status:     "Done",
			Priority:   "High",
			Components: []string{"auth"},
			Labels:     []string{"auth", "sso"},
			FixVersion: "2.3.0",
			Created:    fixtureTime,
			Updated:    fixtureTime,
		},
		{
			Key:        "REL-102",
			Summary:    "Fix token refresh race",
			Type:       "Bug",
			Status:     "Done",
			Priority:   "Medium",
			Components: []string{"auth"},
			FixVersion: "2.3.0",
			Created:    fixtureTime,
			Updated:    fixtureTime,
		},
		{
			Key:            "REL-103",
			Summary:        "Remove legacy v1 endpoints",
			Type:           "Task",
			Status:         "Done",
			Priority:       "High",
			Components:     []string{"api"},
			Labels:         []string{"breaking-change"},
			FixVersion:     "2.3.0",
			BreakingChange: true,
			Changelog:      "The /v1 REST endpoints are removed, use /v2.",
			Created:        fixtureTime,
			Updated:        fixtureTime,
		},
	}
}

// SamplePullRequests returns merged PRs for the release branch.
func SamplePullRequests() []bitbucket.PullRequest {
	return []bitbucket.PullRequest{
		{
			ID:           7,
			Title:        "REL-101: SSO login flow",
			Author:       "dana",
			SourceBranch: "feature/REL-101-sso",
			TargetBranch: "release/2.3.0",
			State:        "MERGED",
			Created:      fixtureTime,
			Updated:      fixtureTime,
			LinkedIssues: []string{"REL-101"},
			ChangedFiles: []string{"auth/sso.go", "docs/auth.md"},
		},
	}
}

// SampleCommits returns commits on the release branch since the base tag.
func SampleCommits() []bitbucket.Commit {
	return []bitbucket.Commit{
		{
			Hash:    "a1b2c3d4",
			Message: "REL-102: fix token refresh race",
			Author:  "sam",
			Date:    fixtureTime,
		},
	}
}

// SamplePages returns a previous release notes page.
func SamplePages() []confluence.Page {
	return []confluence.Page{
		{
			ID:       "1001",
			Title:    "Release Notes 2.2.0",
			Content:  "<h1>2.2.0</h1><p>Previous release.</p>",
			SpaceKey: "DOCS",
			Version:  3,
			Updated:  fixtureTime,
			Labels:   []string{"release-notes"},
		},
	}
}
