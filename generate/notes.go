package generate

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/jira"
	"github.com/randalmurphal/reldocs/prompt"
	"github.com/randalmurphal/reldocs/workflow"
)

// previousNotesLimit caps how much of the prior release notes page is
// included in the prompt.
const previousNotesLimit = 2000

// notesPrompt builds the user prompt describing the release.
func notesPrompt(rc *workflow.ReleaseContext) string {
	baseTag := rc.BaseTag
	if baseTag == "" {
		baseTag = "auto-detect"
	}

	b := prompt.NewBuilder()
	b.AddSection("Release Information", strings.Join([]string{
		"- Version: " + rc.Version,
		"- Release Branch: " + rc.ReleaseBranch,
		"- Base Tag: " + baseTag,
	}, "\n"))
	b.AddSection("Jira Issues", formatIssues(rc.Issues))
	b.AddSection("Pull Requests", formatPullRequests(rc.PullRequests))
	b.AddSection("Commits", formatCommits(rc.Commits))
	b.AddSection("Previous Release Notes (for reference)", previousNotes(rc.WikiPages))
	return b.Build()
}

func formatIssues(issues []jira.Issue) string {
	if len(issues) == 0 {
		return "No Jira issues found."
	}

	var buf strings.Builder
	for _, issue := range issues {
		changelog := issue.Changelog
		if changelog == "" {
			changelog = "N/A"
		}
		fmt.Fprintf(&buf, "- **%s**: %s\n", issue.Key, issue.Summary)
		fmt.Fprintf(&buf, "  - Type: %s\n", issue.Type)
		fmt.Fprintf(&buf, "  - Status: %s\n", issue.Status)
		fmt.Fprintf(&buf, "  - Priority: %s\n", issue.Priority)
		fmt.Fprintf(&buf, "  - Components: %s\n", strings.Join(issue.Components, ", "))
		fmt.Fprintf(&buf, "  - Labels: %s\n", strings.Join(issue.Labels, ", "))
		fmt.Fprintf(&buf, "  - Breaking Change: %t\n", issue.BreakingChange)
		fmt.Fprintf(&buf, "  - Changelog: %s\n", changelog)
	}
	return buf.String()
}

func formatPullRequests(prs []bitbucket.PullRequest) string {
	if len(prs) == 0 {
		return "No pull requests found."
	}

	var buf strings.Builder
	for _, pr := range prs {
		description := pr.Description
		if description == "" {
			description = "N/A"
		}
		fmt.Fprintf(&buf, "- **PR #%d**: %s\n", pr.ID, pr.Title)
		fmt.Fprintf(&buf, "  - Author: %s\n", pr.Author)
		fmt.Fprintf(&buf, "  - State: %s\n", pr.State)
		fmt.Fprintf(&buf, "  - Source: %s -> %s\n", pr.SourceBranch, pr.TargetBranch)
		fmt.Fprintf(&buf, "  - Description: %s\n", description)
		fmt.Fprintf(&buf, "  - Linked Issues: %s\n", strings.Join(pr.LinkedIssues, ", "))
		fmt.Fprintf(&buf, "  - Changed Files: %d files\n", len(pr.ChangedFiles))
	}
	return buf.String()
}

func formatCommits(commits []bitbucket.Commit) string {
	if len(commits) == 0 {
		return "No commits found."
	}

	var buf strings.Builder
	for _, commit := range commits {
		hash := commit.Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		fmt.Fprintf(&buf, "- **%s**: %s\n", hash, firstLine(commit.Message))
		fmt.Fprintf(&buf, "  - Author: %s\n", commit.Author)
		fmt.Fprintf(&buf, "  - Date: %s\n", commit.Date.Format("2006-01-02"))
		fmt.Fprintf(&buf, "  - Changed Files: %d files\n", len(commit.ChangedFiles))
	}
	return buf.String()
}

// previousNotes returns the most recent prior release notes page,
// truncated so one large page cannot dominate the prompt.
func previousNotes(pages []confluence.Page) string {
	for _, page := range pages {
		title := strings.ToLower(page.Title)
		if !strings.Contains(title, "release notes") && !strings.Contains(title, "changelog") {
			continue
		}
		if len(page.Content) > previousNotesLimit {
			return page.Content[:previousNotesLimit] + "..."
		}
		return page.Content
	}
	return "No previous release notes found."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// renderNotes produces release notes without an LLM. The layout matches
// what the prompt asks the model for, so downstream consumers see the
// same document shape either way.
func renderNotes(rc *workflow.ReleaseContext) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "# Release %s\n\n", rc.Version)

	fmt.Fprintf(&buf, "## Summary\n\nRelease %s from branch %s: %d issues, %d pull requests, %d commits.\n\n",
		rc.Version, rc.ReleaseBranch, len(rc.Issues), len(rc.PullRequests), len(rc.Commits))

	writeIssueSection(&buf, "New Features", rc.NewFeatures)
	writeIssueSection(&buf, "Bug Fixes", rc.BugFixes)

	if len(rc.BreakingChanges) > 0 {
		buf.WriteString("## Breaking Changes\n\n")
		for _, issue := range rc.BreakingChanges {
			fmt.Fprintf(&buf, "- **%s** (%s)\n", issue.Summary, issue.Key)
			if issue.Changelog != "" {
				fmt.Fprintf(&buf, "  - %s\n", issue.Changelog)
			}
		}
		buf.WriteString("\n## Upgrade Instructions\n\nReview each breaking change above before upgrading.\n\n")
	}

	if len(rc.PullRequests) > 0 {
		buf.WriteString("## Pull Requests\n\n")
		for _, pr := range rc.PullRequests {
			fmt.Fprintf(&buf, "- %s (#%d)\n", pr.Title, pr.ID)
		}
		buf.WriteString("\n")
	}

	if len(rc.AffectedComponents) > 0 {
		buf.WriteString("## Affected Components\n\n")
		for _, component := range rc.AffectedComponents {
			fmt.Fprintf(&buf, "- %s\n", component)
		}
		buf.WriteString("\n")
	}

	return strings.TrimRight(buf.String(), "\n") + "\n"
}

func writeIssueSection(buf *strings.Builder, header string, issues []jira.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(buf, "## %s\n\n", header)
	for _, issue := range issues {
		fmt.Fprintf(buf, "- %s (%s)\n", issue.Summary, issue.Key)
	}
	buf.WriteString("\n")
}
