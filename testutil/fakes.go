package testutil

import (
	"context"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/jira"
	"github.com/randalmurphal/reldocs/workflow"
)

// FakeTracker is an in-memory workflow.Tracker.
type FakeTracker struct {
	FixVersionIssues []jira.Issue
	BranchIssues     []jira.Issue
	Err              error

	FixVersionCalls int
	BranchCalls     int
}

// SearchFixVersion implements workflow.Tracker.
func (f *FakeTracker) SearchFixVersion(ctx context.Context, version string) ([]jira.Issue, error) {
	f.FixVersionCalls++
	return f.FixVersionIssues, f.Err
}

// SearchBranch implements workflow.Tracker.
func (f *FakeTracker) SearchBranch(ctx context.Context, branch string) ([]jira.Issue, error) {
	f.BranchCalls++
	return f.BranchIssues, f.Err
}

// FakeCodeHost is an in-memory workflow.CodeHost.
type FakeCodeHost struct {
	PRs     []bitbucket.PullRequest
	Commits []bitbucket.Commit
	Err     error
}

// PullRequestsInto implements workflow.CodeHost.
func (f *FakeCodeHost) PullRequestsInto(ctx context.Context, branch string) ([]bitbucket.PullRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PRs, nil
}

// CommitsOn implements workflow.CodeHost.
func (f *FakeCodeHost) CommitsOn(ctx context.Context, branch, baseTag string) ([]bitbucket.Commit, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Commits, nil
}

// FakeWiki is an in-memory workflow.Wiki.
type FakeWiki struct {
	ReleasePages []confluence.Page
	LabeledPages []confluence.Page
	Err          error

	LabelQueries [][]string
}

// ReleaseNotesPages implements workflow.Wiki.
func (f *FakeWiki) ReleaseNotesPages(ctx context.Context) ([]confluence.Page, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ReleasePages, nil
}

// PagesByLabels implements workflow.Wiki.
func (f *FakeWiki) PagesByLabels(ctx context.Context, labels []string) ([]confluence.Page, error) {
	f.LabelQueries = append(f.LabelQueries, labels)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.LabeledPages, nil
}

// FakeGenerator is an in-memory workflow.Generator.
type FakeGenerator struct {
	Notes    string
	Edits    []workflow.DocEdit
	NotesErr error
	EditsErr error
}

// ReleaseNotes implements workflow.Generator.
func (f *FakeGenerator) ReleaseNotes(ctx context.Context, rc *workflow.ReleaseContext) (string, error) {
	if f.NotesErr != nil {
		return "", f.NotesErr
	}
	if f.Notes != "" {
		return f.Notes, nil
	}
	return "# Release " + rc.Version + "\n", nil
}

// PlanEdits implements workflow.Generator.
func (f *FakeGenerator) PlanEdits(ctx context.Context, rc *workflow.ReleaseContext) ([]workflow.DocEdit, error) {
	if f.EditsErr != nil {
		return nil, f.EditsErr
	}
	if f.Edits != nil {
		return f.Edits, nil
	}
	return []workflow.DocEdit{
		{FilePath: "releases/" + rc.Version + ".md", Operation: "create", Content: rc.ReleaseNotes},
	}, nil
}
