package jira

import (
	"strings"
	"time"
)

// Issue is a release-relevant view of a Jira issue.
type Issue struct {
	Key            string    `json:"key"`
	Summary        string    `json:"summary"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Components     []string  `json:"components,omitempty"`
	Labels         []string  `json:"labels,omitempty"`
	FixVersion     string    `json:"fixVersion,omitempty"`
	EpicKey        string    `json:"epicKey,omitempty"`
	Changelog      string    `json:"changelog,omitempty"`
	BreakingChange bool      `json:"breakingChange,omitempty"`
	Assignee       string    `json:"assignee,omitempty"`
	Reporter       string    `json:"reporter,omitempty"`
	Created        time.Time `json:"created,omitempty"`
	Updated        time.Time `json:"updated,omitempty"`
}

// breakingLabels mark an issue as a breaking change.
var breakingLabels = map[string]bool{
	"breaking":        true,
	"breaking-change": true,
	"breaking_change": true,
}

// Wire types for the Jira search API.

type searchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []wireIssue `json:"issues"`
}

type wireIssue struct {
	Key    string     `json:"key"`
	Fields wireFields `json:"fields"`
}

type wireFields struct {
	Summary     string      `json:"summary"`
	Description string      `json:"description"`
	IssueType   namedEntity `json:"issuetype"`
	Status      namedEntity `json:"status"`
	Priority    namedEntity `json:"priority"`
	Components  []namedEntity `json:"components"`
	Labels      []string    `json:"labels"`
	FixVersions []namedEntity `json:"fixVersions"`
	Parent      *wireIssue  `json:"parent"`
	Assignee    *userEntity `json:"assignee"`
	Reporter    *userEntity `json:"reporter"`
	Created     jiraTime    `json:"created"`
	Updated     jiraTime    `json:"updated"`
}

type namedEntity struct {
	Name string `json:"name"`
}

type userEntity struct {
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
}

func (u *userEntity) display() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

// jiraTime parses Jira's timestamp format (RFC3339 with a compact zone
// offset, e.g. 2024-03-04T12:30:00.000+0000).
type jiraTime struct {
	time.Time
}

func (t *jiraTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Leave zero rather than failing the whole search over one timestamp.
	return nil
}

// toIssue maps a wire issue onto the domain model.
func toIssue(w wireIssue) Issue {
	f := w.Fields
	issue := Issue{
		Key:      w.Key,
		Summary:  f.Summary,
		Type:     f.IssueType.Name,
		Status:   f.Status.Name,
		Priority: f.Priority.Name,
		Labels:   f.Labels,
		Assignee: f.Assignee.display(),
		Reporter: f.Reporter.display(),
		Created:  f.Created.Time,
		Updated:  f.Updated.Time,
	}
	for _, c := range f.Components {
		issue.Components = append(issue.Components, c.Name)
	}
	if len(f.FixVersions) > 0 {
		issue.FixVersion = f.FixVersions[0].Name
	}
	if f.Parent != nil {
		issue.EpicKey = f.Parent.Key
	}
	for _, label := range f.Labels {
		if breakingLabels[strings.ToLower(label)] {
			issue.BreakingChange = true
			break
		}
	}
	issue.Changelog = extractChangelog(f.Description)
	return issue
}

// extractChangelog pulls a changelog section out of an issue description.
// Sections start at a line mentioning "changelog", "what's new" or "changes"
// and run until the next heading.
func extractChangelog(description string) string {
	if description == "" {
		return ""
	}
	var lines []string
	in := false
	for _, line := range strings.Split(description, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.Contains(lower, "changelog"),
			strings.Contains(lower, "what's new"),
			strings.Contains(lower, "changes"):
			in = true
		case in && strings.HasPrefix(trimmed, "#"):
			in = false
		case in && trimmed != "":
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
