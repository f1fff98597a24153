package workflow

import (
	"sort"
	"strings"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/jira"
)

// DocEdit is a planned documentation change.
type DocEdit struct {
	FilePath   string            `json:"filePath"`
	Operation  string            `json:"operation"` // "create", "update", "delete"
	Content    string            `json:"content,omitempty"`
	OldContent string            `json:"oldContent,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ReleaseContext aggregates everything gathered and derived for a release.
// The gather steps each contribute their own collections; the executor
// merges the contributions via State.Union, which concatenates collections
// and lets later non-empty scalars replace earlier ones.
type ReleaseContext struct {
	Version       string `json:"version"`
	ReleaseBranch string `json:"releaseBranch"`
	BaseTag       string `json:"baseTag,omitempty"`

	// Gathered data
	Issues       []jira.Issue            `json:"issues,omitempty"`
	PullRequests []bitbucket.PullRequest `json:"pullRequests,omitempty"`
	Commits      []bitbucket.Commit      `json:"commits,omitempty"`
	WikiPages    []confluence.Page       `json:"wikiPages,omitempty"`

	// Analysis results
	AffectedComponents []string     `json:"affectedComponents,omitempty"`
	BreakingChanges    []jira.Issue `json:"breakingChanges,omitempty"`
	NewFeatures        []jira.Issue `json:"newFeatures,omitempty"`
	BugFixes           []jira.Issue `json:"bugFixes,omitempty"`

	// Generated content
	ReleaseNotes string    `json:"releaseNotes,omitempty"`
	DocEdits     []DocEdit `json:"docEdits,omitempty"`
}

// merge combines two contexts into a fresh value: collections concatenate
// in receiver-then-other order, scalars take other's value when non-empty.
// Neither input is mutated. A nil receiver is treated as empty.
func (c *ReleaseContext) merge(other *ReleaseContext) *ReleaseContext {
	if other == nil {
		if c == nil {
			return nil
		}
		cp := *c
		return &cp
	}

	var merged ReleaseContext
	if c != nil {
		merged = *c
	}

	if other.Version != "" {
		merged.Version = other.Version
	}
	if other.ReleaseBranch != "" {
		merged.ReleaseBranch = other.ReleaseBranch
	}
	if other.BaseTag != "" {
		merged.BaseTag = other.BaseTag
	}
	if other.ReleaseNotes != "" {
		merged.ReleaseNotes = other.ReleaseNotes
	}

	merged.Issues = concat(merged.Issues, other.Issues)
	merged.PullRequests = concat(merged.PullRequests, other.PullRequests)
	merged.Commits = concat(merged.Commits, other.Commits)
	merged.WikiPages = concat(merged.WikiPages, other.WikiPages)
	merged.AffectedComponents = concat(merged.AffectedComponents, other.AffectedComponents)
	merged.BreakingChanges = concat(merged.BreakingChanges, other.BreakingChanges)
	merged.NewFeatures = concat(merged.NewFeatures, other.NewFeatures)
	merged.BugFixes = concat(merged.BugFixes, other.BugFixes)
	merged.DocEdits = concat(merged.DocEdits, other.DocEdits)

	return &merged
}

// analyze categorizes the gathered issues and derives the affected
// components. It returns a delta context holding only the analysis fields,
// so merging it back never duplicates the gathered collections.
func (c *ReleaseContext) analyze() *ReleaseContext {
	delta := &ReleaseContext{}

	for _, issue := range c.Issues {
		switch {
		case issue.BreakingChange:
			delta.BreakingChanges = append(delta.BreakingChanges, issue)
		case isFeatureType(issue.Type):
			delta.NewFeatures = append(delta.NewFeatures, issue)
		case isBugType(issue.Type):
			delta.BugFixes = append(delta.BugFixes, issue)
		}
	}

	components := make(map[string]bool)
	for _, issue := range c.Issues {
		for _, comp := range issue.Components {
			components[comp] = true
		}
	}
	for _, p := range c.PullRequests {
		for _, path := range p.ChangedFiles {
			if i := strings.IndexByte(path, '/'); i > 0 {
				components[path[:i]] = true
			}
		}
	}
	for comp := range components {
		delta.AffectedComponents = append(delta.AffectedComponents, comp)
	}
	sort.Strings(delta.AffectedComponents)

	return delta
}

// IssueLabels returns the distinct labels across the gathered issues,
// sorted for stable wiki queries.
func (c *ReleaseContext) IssueLabels() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var labels []string
	for _, issue := range c.Issues {
		for _, l := range issue.Labels {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	sort.Strings(labels)
	return labels
}

func isFeatureType(issueType string) bool {
	switch strings.ToLower(issueType) {
	case "story", "feature", "epic":
		return true
	}
	return false
}

func isBugType(issueType string) bool {
	switch strings.ToLower(issueType) {
	case "bug", "defect":
		return true
	}
	return false
}

func concat[T any](a, b []T) []T {
	if len(b) == 0 {
		return a
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
