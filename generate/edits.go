package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphal/reldocs/jira"
	"github.com/randalmurphal/reldocs/workflow"
)

// componentGuides maps affected components to the guide files they own.
// Components outside this map get no guide update.
var componentGuides = map[string]string{
	"api":        "docs/api-guide.md",
	"ui":         "docs/ui-guide.md",
	"sdk":        "docs/sdk-guide.md",
	"config":     "docs/configuration.md",
	"migrations": "docs/migrations.md",
}

// PlanEdits plans the documentation edits for a release: the versioned
// release notes file, a changelog entry, and guide updates for affected
// components. Planning is deterministic and ignores the context's
// cancellation since no I/O happens.
func (g *Generator) PlanEdits(_ context.Context, rc *workflow.ReleaseContext) ([]workflow.DocEdit, error) {
	if rc == nil {
		return nil, fmt.Errorf("generate: release context is nil")
	}

	var edits []workflow.DocEdit

	if rc.ReleaseNotes != "" {
		edits = append(edits, workflow.DocEdit{
			FilePath:  fmt.Sprintf("docs/releases/%s.md", rc.Version),
			Operation: "create",
			Content:   rc.ReleaseNotes,
			Metadata: map[string]string{
				"version": rc.Version,
				"type":    "release_notes",
			},
		})
	}

	if len(rc.Issues) > 0 || len(rc.PullRequests) > 0 {
		edits = append(edits, workflow.DocEdit{
			FilePath:  "docs/CHANGELOG.md",
			Operation: "update",
			Content:   ChangelogEntry(rc),
			Metadata: map[string]string{
				"version": rc.Version,
				"type":    "changelog_entry",
			},
		})
	}

	for _, component := range rc.AffectedComponents {
		if edit := componentGuideUpdate(component, rc); edit != nil {
			edits = append(edits, *edit)
		}
	}

	return edits, nil
}

// ChangelogEntry renders the changelog section for the release.
func ChangelogEntry(rc *workflow.ReleaseContext) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "## [%s] - %s\n\n", rc.Version, rc.ReleaseBranch)

	writeChangelogSection(&buf, "Added", rc.NewFeatures)
	writeChangelogSection(&buf, "Fixed", rc.BugFixes)
	writeChangelogSection(&buf, "Breaking Changes", rc.BreakingChanges)

	if len(rc.PullRequests) > 0 {
		buf.WriteString("### Pull Requests\n")
		for _, pr := range rc.PullRequests {
			href := pr.Links["html"]
			if href == "" {
				href = "#"
			}
			fmt.Fprintf(&buf, "- [%s](%s) (#%d)\n", pr.Title, href, pr.ID)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func writeChangelogSection(buf *strings.Builder, header string, issues []jira.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(buf, "### %s\n", header)
	for _, issue := range issues {
		fmt.Fprintf(buf, "- %s (%s)\n", issue.Summary, issue.Key)
	}
	buf.WriteString("\n")
}

// componentGuideUpdate plans the guide update for one component, or nil
// when the component has no guide file or no issues touching it.
func componentGuideUpdate(component string, rc *workflow.ReleaseContext) *workflow.DocEdit {
	guideFile, ok := componentGuides[strings.ToLower(component)]
	if !ok {
		return nil
	}

	issues := issuesForComponent(component, rc.Issues)
	if len(issues) == 0 {
		return nil
	}

	return &workflow.DocEdit{
		FilePath:  guideFile,
		Operation: "update",
		Content:   componentUpdateContent(component, issues, rc.Version),
		Metadata: map[string]string{
			"component": component,
			"version":   rc.Version,
			"type":      "component_update",
		},
	}
}

func issuesForComponent(component string, issues []jira.Issue) []jira.Issue {
	var matched []jira.Issue
	for _, issue := range issues {
		for _, c := range issue.Components {
			if strings.EqualFold(c, component) {
				matched = append(matched, issue)
				break
			}
		}
	}
	return matched
}

func componentUpdateContent(component string, issues []jira.Issue, version string) string {
	var features, bugs, breaking []jira.Issue
	for _, issue := range issues {
		switch strings.ToLower(issue.Type) {
		case "story", "feature":
			features = append(features, issue)
		case "bug", "defect":
			bugs = append(bugs, issue)
		}
		if issue.BreakingChange {
			breaking = append(breaking, issue)
		}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "## Updates in %s\n\n", version)

	if len(features) > 0 {
		buf.WriteString("### New Features\n")
		for _, issue := range features {
			fmt.Fprintf(&buf, "- **%s** (%s)\n", issue.Summary, issue.Key)
			if issue.Changelog != "" {
				fmt.Fprintf(&buf, "  - %s\n", issue.Changelog)
			}
		}
		buf.WriteString("\n")
	}

	if len(bugs) > 0 {
		buf.WriteString("### Bug Fixes\n")
		for _, issue := range bugs {
			fmt.Fprintf(&buf, "- **%s** (%s)\n", issue.Summary, issue.Key)
		}
		buf.WriteString("\n")
	}

	if len(breaking) > 0 {
		buf.WriteString("### Breaking Changes\n")
		for _, issue := range breaking {
			action := issue.Changelog
			if action == "" {
				action = "See issue for details"
			}
			fmt.Fprintf(&buf, "- **%s** (%s)\n", issue.Summary, issue.Key)
			fmt.Fprintf(&buf, "  - **Action Required**: %s\n", action)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}
