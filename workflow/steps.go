package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/flow"
	"github.com/randalmurphal/reldocs/jira"
	"github.com/randalmurphal/reldocs/pr"
)

// Tracker is the slice of the issue tracker the workflow needs.
type Tracker interface {
	SearchFixVersion(ctx context.Context, version string) ([]jira.Issue, error)
	SearchBranch(ctx context.Context, branch string) ([]jira.Issue, error)
}

// CodeHost is the slice of the code host the workflow needs.
type CodeHost interface {
	PullRequestsInto(ctx context.Context, branch string) ([]bitbucket.PullRequest, error)
	CommitsOn(ctx context.Context, branch, baseTag string) ([]bitbucket.Commit, error)
}

// Wiki is the slice of the wiki the workflow needs.
type Wiki interface {
	ReleaseNotesPages(ctx context.Context) ([]confluence.Page, error)
	PagesByLabels(ctx context.Context, labels []string) ([]confluence.Page, error)
}

// Generator produces release notes and plans documentation edits.
type Generator interface {
	ReleaseNotes(ctx context.Context, rc *ReleaseContext) (string, error)
	PlanEdits(ctx context.Context, rc *ReleaseContext) ([]DocEdit, error)
}

// Steps binds the collaborators into the release graph's step functions.
type Steps struct {
	Tracker   Tracker
	CodeHost  CodeHost
	Wiki      Wiki
	Generator Generator
	Publisher pr.Publisher

	// TargetBranch is the docs repo branch PRs target. Default "main".
	TargetBranch string
	Labels       []string
	Assignees    []string

	Log *slog.Logger
}

func (s *Steps) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Steps) target() string {
	if s.TargetBranch == "" {
		return "main"
	}
	return s.TargetBranch
}

var versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?$`)

// DocsBranch is the branch name the documentation changes land on.
func DocsBranch(version string) string {
	return "docs/release-" + version
}

// ValidateRelease checks the run input before anything is fetched.
func (s *Steps) ValidateRelease(ctx context.Context, snap State) flow.Outcome {
	if snap.ReleaseBranch == "" {
		return flow.Fail("release branch is required")
	}
	if !versionRe.MatchString(snap.Version) {
		return flow.Failf("invalid version format: %q", snap.Version)
	}
	return flow.Updated(flow.Update{FieldCurrentStep: StepValidate})
}

// GatherJira fetches the issues shipping in the release: by fix version
// first, falling back to a release-branch text search.
func (s *Steps) GatherJira(ctx context.Context, snap State) flow.Outcome {
	issues, err := s.Tracker.SearchFixVersion(ctx, snap.Version)
	if err != nil {
		return gatherFailure("jira", err)
	}
	if len(issues) == 0 {
		issues, err = s.Tracker.SearchBranch(ctx, snap.ReleaseBranch)
		if err != nil {
			return gatherFailure("jira", err)
		}
	}
	s.log().Info("gathered tracker issues", "run", snap.RunID, "version", snap.Version, "issues", len(issues))

	// An empty result is a valid release with no tracked issues, not a
	// problem worth warning about.
	return flow.Updated(flow.Update{FieldContext: &ReleaseContext{
		Version:       snap.Version,
		ReleaseBranch: snap.ReleaseBranch,
		BaseTag:       snap.BaseTag,
		Issues:        issues,
	}})
}

// GatherBitbucket fetches the merged pull requests targeting the release
// branch and the commits on it since the base tag.
func (s *Steps) GatherBitbucket(ctx context.Context, snap State) flow.Outcome {
	prs, err := s.CodeHost.PullRequestsInto(ctx, snap.ReleaseBranch)
	if err != nil {
		return gatherFailure("bitbucket", err)
	}
	commits, err := s.CodeHost.CommitsOn(ctx, snap.ReleaseBranch, snap.BaseTag)
	if err != nil {
		return gatherFailure("bitbucket", err)
	}
	s.log().Info("gathered code host data", "run", snap.RunID, "prs", len(prs), "commits", len(commits))

	return flow.Updated(flow.Update{FieldContext: &ReleaseContext{
		Version:       snap.Version,
		ReleaseBranch: snap.ReleaseBranch,
		BaseTag:       snap.BaseTag,
		PullRequests:  prs,
		Commits:       commits,
	}})
}

// GatherConfluence fetches previous release notes pages, plus pages
// labeled like the gathered issues when issue labels are already on the
// snapshot.
func (s *Steps) GatherConfluence(ctx context.Context, snap State) flow.Outcome {
	pages, err := s.Wiki.ReleaseNotesPages(ctx)
	if err != nil {
		return gatherFailure("confluence", err)
	}
	if labels := snap.Context.IssueLabels(); len(labels) > 0 {
		labeled, err := s.Wiki.PagesByLabels(ctx, labels)
		if err != nil {
			return gatherFailure("confluence", err)
		}
		pages = append(pages, labeled...)
	}
	s.log().Info("gathered wiki pages", "run", snap.RunID, "pages", len(pages))

	return flow.Updated(flow.Update{FieldContext: &ReleaseContext{
		Version:       snap.Version,
		ReleaseBranch: snap.ReleaseBranch,
		BaseTag:       snap.BaseTag,
		WikiPages:     pages,
	}})
}

// AggregateContext analyzes the merged gather results: categorizes issues
// and derives the affected components.
func (s *Steps) AggregateContext(ctx context.Context, snap State) flow.Outcome {
	if snap.Context == nil {
		return flow.Fail("no release context gathered")
	}
	return flow.Updated(flow.Update{
		FieldContext:     snap.Context.analyze(),
		FieldCurrentStep: StepAggregate,
	})
}

// GenerateReleaseDocs produces the release notes document.
func (s *Steps) GenerateReleaseDocs(ctx context.Context, snap State) flow.Outcome {
	if snap.Context == nil {
		return flow.Fail("no context available for document generation")
	}
	notes, err := s.Generator.ReleaseNotes(ctx, snap.Context)
	if err != nil {
		return flow.Failf("generate release notes: %v", err)
	}
	return flow.Updated(flow.Update{
		FieldContext:     &ReleaseContext{ReleaseNotes: notes},
		FieldCurrentStep: StepGenerate,
	})
}

// PlanFileEdits turns the generated content into concrete file edits.
func (s *Steps) PlanFileEdits(ctx context.Context, snap State) flow.Outcome {
	if snap.Context == nil {
		return flow.Fail("no context available for planning edits")
	}
	edits, err := s.Generator.PlanEdits(ctx, snap.Context)
	if err != nil {
		return flow.Failf("plan documentation edits: %v", err)
	}
	return flow.Updated(flow.Update{
		FieldContext:     &ReleaseContext{DocEdits: edits},
		FieldCurrentStep: StepPlanEdits,
	})
}

// CreateDocsBranch creates the branch the edits will land on. An existing
// branch from a previous attempt is reused with a warning.
func (s *Steps) CreateDocsBranch(ctx context.Context, snap State) flow.Outcome {
	if s.Publisher == nil {
		return flow.Failf("%v", pr.ErrNoPublisher)
	}
	branch := DocsBranch(snap.Version)
	err := s.Publisher.CreateBranch(ctx, branch, s.target())
	if errors.Is(err, pr.ErrBranchExists) {
		return flow.Updated(flow.Update{
			FieldCurrentStep:   StepCreateBranch,
			flow.FieldWarnings: fmt.Sprintf("branch %s already exists, reusing it", branch),
		})
	}
	if err != nil {
		return flow.Failf("create docs branch: %v", err)
	}
	return flow.Updated(flow.Update{FieldCurrentStep: StepCreateBranch})
}

// ApplyFileEdits commits the planned edits onto the docs branch.
func (s *Steps) ApplyFileEdits(ctx context.Context, snap State) flow.Outcome {
	if s.Publisher == nil {
		return flow.Failf("%v", pr.ErrNoPublisher)
	}
	if snap.Context == nil || len(snap.Context.DocEdits) == 0 {
		return flow.Fail("no file edits to apply")
	}

	files := make([]pr.FileChange, 0, len(snap.Context.DocEdits))
	var written []string
	for _, edit := range snap.Context.DocEdits {
		files = append(files, pr.FileChange{
			Path:      edit.FilePath,
			Operation: edit.Operation,
			Content:   edit.Content,
		})
		if edit.Operation != "delete" {
			written = append(written, edit.FilePath)
		}
	}

	branch := DocsBranch(snap.Version)
	message := fmt.Sprintf("Docs: release %s", snap.Version)
	if err := s.Publisher.CommitFiles(ctx, branch, message, files); err != nil {
		return flow.Failf("apply file edits: %v", err)
	}
	s.log().Info("committed documentation edits", "run", snap.RunID, "branch", branch, "files", len(files))

	return flow.Updated(flow.Update{
		FieldGeneratedFiles: written,
		FieldCurrentStep:    StepApplyEdits,
	})
}

// OpenPR opens the documentation pull request.
func (s *Steps) OpenPR(ctx context.Context, snap State) flow.Outcome {
	if s.Publisher == nil {
		return flow.Failf("%v", pr.ErrNoPublisher)
	}

	created, err := s.Publisher.CreatePR(ctx, pr.Request{
		Title:        fmt.Sprintf("Docs: Release %s", snap.Version),
		Description:  prDescription(snap),
		SourceBranch: DocsBranch(snap.Version),
		TargetBranch: s.target(),
		Labels:       s.Labels,
		Assignees:    s.Assignees,
	})
	if err != nil {
		return flow.Failf("open pull request: %v", err)
	}
	s.log().Info("opened documentation PR", "run", snap.RunID, "pr", created.Number, "url", created.URL)

	return flow.Updated(flow.Update{
		FieldPRURL:       created.URL,
		FieldPRNumber:    created.Number,
		FieldCurrentStep: StepOpenPR,
	})
}

// Finalize stamps the run as completed.
func (s *Steps) Finalize(ctx context.Context, snap State) flow.Outcome {
	return flow.Updated(flow.Update{
		FieldCurrentStep: "completed",
		FieldCompletedAt: time.Now().UTC(),
	})
}

// gatherFailure reports a collaborator error from a gather step. The
// warning survives the merge even though the step failed, so the halted
// run still names every source that broke.
func gatherFailure(source string, err error) flow.Outcome {
	return flow.FailWith(
		fmt.Sprintf("gather %s data: %v", source, err),
		flow.Update{flow.FieldWarnings: fmt.Sprintf("failed to gather %s data: %v", source, err)},
	)
}

// prDescription renders the PR body from the gathered context.
func prDescription(snap State) string {
	desc := fmt.Sprintf("Automated documentation updates for release %s.\n", snap.Version)
	if c := snap.Context; c != nil {
		desc += fmt.Sprintf(
			"\nGathered %d issues, %d pull requests, %d commits.\n",
			len(c.Issues), len(c.PullRequests), len(c.Commits),
		)
		if len(c.BreakingChanges) > 0 {
			desc += fmt.Sprintf("Contains %d breaking changes.\n", len(c.BreakingChanges))
		}
		if len(c.AffectedComponents) > 0 {
			desc += "Affected components: " + strings.Join(c.AffectedComponents, ", ") + "\n"
		}
	}
	return desc
}
