package workflow_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/reldocs/notify"
	"github.com/randalmurphal/reldocs/pr"
	"github.com/randalmurphal/reldocs/testutil"
	"github.com/randalmurphal/reldocs/workflow"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(ctx context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestVersionFromBranch(t *testing.T) {
	tests := []struct {
		branch  string
		want    string
		wantErr bool
	}{
		{"release/2.3.0", "2.3.0", false},
		{"release/2.3.0-rc.1", "2.3.0-rc.1", false},
		{"release/10.20.30", "10.20.30", false},
		{"feature/2.3.0", "", true},
		{"release/2.3", "", true},
		{"release/", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := workflow.VersionFromBranch(tt.branch)
		if (err != nil) != tt.wantErr {
			t.Errorf("VersionFromBranch(%q) error = %v, wantErr %v", tt.branch, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("VersionFromBranch(%q) = %q, want %q", tt.branch, got, tt.want)
		}
	}
}

func TestRunner_HappyPath(t *testing.T) {
	steps, pub := testSteps()
	notes := &recordingNotifier{}
	runner, err := workflow.NewRunner(steps, notes, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	final, err := runner.Run(testutil.TestContext(t), workflow.Input{
		ReleaseBranch: "release/2.3.0",
		BaseTag:       "v2.2.0",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Failed() {
		t.Fatalf("run halted: %s (warnings: %v)", final.Error, final.Warnings)
	}
	if final.CurrentStep != "completed" {
		t.Errorf("current step = %q", final.CurrentStep)
	}
	if final.CompletedAt.IsZero() {
		t.Error("CompletedAt not stamped")
	}
	if final.PRURL == "" || final.PRNumber != 1 {
		t.Errorf("PR = %q #%d", final.PRURL, final.PRNumber)
	}
	if len(final.GeneratedFiles) != 1 || final.GeneratedFiles[0] != "releases/2.3.0.md" {
		t.Errorf("generated files = %v", final.GeneratedFiles)
	}

	// All three gathers contributed, and the analysis ran over the union.
	c := final.Context
	if c == nil {
		t.Fatal("no context on final state")
	}
	if len(c.Issues) != 3 || len(c.PullRequests) != 1 || len(c.Commits) != 1 || len(c.WikiPages) != 1 {
		t.Errorf("gathered: issues=%d prs=%d commits=%d pages=%d",
			len(c.Issues), len(c.PullRequests), len(c.Commits), len(c.WikiPages))
	}
	if len(c.BreakingChanges) != 1 || len(c.NewFeatures) != 1 || len(c.BugFixes) != 1 {
		t.Errorf("analysis: breaking=%d features=%d fixes=%d",
			len(c.BreakingChanges), len(c.NewFeatures), len(c.BugFixes))
	}
	if c.ReleaseNotes == "" {
		t.Error("release notes not generated")
	}

	// Concurrent gathers over disjoint union contributions produce no
	// merge warnings.
	if len(final.Warnings) != 0 {
		t.Errorf("warnings = %v", final.Warnings)
	}

	if len(pub.Branches) != 1 || pub.Branches[0] != "docs/release-2.3.0" {
		t.Errorf("branches = %v", pub.Branches)
	}

	got := notes.types()
	want := []notify.EventType{notify.EventRunStarted, notify.EventRunCompleted, notify.EventPRCreated}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRunner_ZeroDataCompletesWithoutWarnings(t *testing.T) {
	steps, _ := testSteps()
	steps.Tracker = &testutil.FakeTracker{}
	steps.CodeHost = &testutil.FakeCodeHost{}
	steps.Wiki = &testutil.FakeWiki{}
	runner, err := workflow.NewRunner(steps, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	final, err := runner.Run(testutil.TestContext(t), workflow.Input{ReleaseBranch: "release/1.2.3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Failed() {
		t.Fatalf("run halted: %s", final.Error)
	}
	if len(final.Warnings) != 0 {
		t.Errorf("zero-data run must not warn, got %v", final.Warnings)
	}

	c := final.Context
	if c == nil {
		t.Fatal("no context on final state")
	}
	if n := len(c.Issues) + len(c.PullRequests) + len(c.Commits) + len(c.WikiPages); n != 0 {
		t.Errorf("gathered %d items from empty sources", n)
	}
	if n := len(c.BreakingChanges) + len(c.NewFeatures) + len(c.BugFixes) + len(c.AffectedComponents); n != 0 {
		t.Errorf("analysis categorized %d items from nothing", n)
	}

	// A minimal document still gets generated and published.
	if c.ReleaseNotes == "" {
		t.Error("release notes not generated")
	}
	if final.PRURL == "" {
		t.Error("PR not opened")
	}
}

func TestRunner_DryRunParity(t *testing.T) {
	input := workflow.Input{ReleaseBranch: "release/2.3.0", BaseTag: "v2.2.0"}

	liveSteps, _ := testSteps()
	liveRunner, err := workflow.NewRunner(liveSteps, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	live, err := liveRunner.Run(testutil.TestContext(t), input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	drySteps, _ := testSteps()
	staging, err := pr.NewStagingPublisher(t.TempDir())
	if err != nil {
		t.Fatalf("NewStagingPublisher: %v", err)
	}
	drySteps.Publisher = staging
	dryRunner, err := workflow.NewRunner(drySteps, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	dryInput := input
	dryInput.DryRun = true
	dry, err := dryRunner.Run(testutil.TestContext(t), dryInput)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if live.Failed() || dry.Failed() {
		t.Fatalf("halted runs: live=%q dry=%q", live.Error, dry.Error)
	}

	// Gathering, analysis, generation, and edit planning are identical
	// between the two modes.
	if !reflect.DeepEqual(live.Context, dry.Context) {
		t.Errorf("contexts differ:\nlive: %+v\ndry:  %+v", live.Context, dry.Context)
	}
	if !reflect.DeepEqual(live.GeneratedFiles, dry.GeneratedFiles) {
		t.Errorf("generated files differ: %v vs %v", live.GeneratedFiles, dry.GeneratedFiles)
	}
	if !reflect.DeepEqual(live.Warnings, dry.Warnings) {
		t.Errorf("warnings differ: %v vs %v", live.Warnings, dry.Warnings)
	}

	// Only the publication output differs.
	if live.PRURL == "" || live.PRNumber != 1 {
		t.Errorf("live PR = %q #%d", live.PRURL, live.PRNumber)
	}
	if !strings.HasPrefix(dry.PRURL, "file://") || dry.PRNumber != 0 {
		t.Errorf("dry PR = %q #%d", dry.PRURL, dry.PRNumber)
	}
}

func TestRunner_GatherFailureKeepsPartialResults(t *testing.T) {
	steps, pub := testSteps()
	steps.CodeHost = &testutil.FakeCodeHost{Err: errors.New("network timeout")}
	notes := &recordingNotifier{}
	runner, err := workflow.NewRunner(steps, notes, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	final, err := runner.Run(testutil.TestContext(t), workflow.Input{ReleaseBranch: "release/2.3.0"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !final.Failed() {
		t.Fatal("expected halted run")
	}
	if !strings.Contains(final.Error, "bitbucket") || !strings.Contains(final.Error, "network timeout") {
		t.Errorf("error = %q", final.Error)
	}

	// Sibling gathers still contributed their data.
	if final.Context == nil || len(final.Context.Issues) != 3 || len(final.Context.WikiPages) != 1 {
		t.Errorf("partial context = %+v", final.Context)
	}
	if len(final.Context.PullRequests) != 0 {
		t.Error("failed gather must not contribute data")
	}

	foundWarning := false
	for _, w := range final.Warnings {
		if strings.Contains(w, "failed to gather bitbucket data") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("warnings = %v", final.Warnings)
	}

	// Nothing downstream of the failure ran.
	if final.PRURL != "" || len(pub.Branches) != 0 || len(pub.Requests) != 0 {
		t.Errorf("publish happened on a failed run: %q %v", final.PRURL, pub.Branches)
	}
	if final.Context.ReleaseNotes != "" {
		t.Error("generation ran on a failed run")
	}

	got := notes.types()
	if len(got) != 2 || got[1] != notify.EventRunFailed {
		t.Errorf("events = %v", got)
	}
}

func TestRunner_RejectsNonReleaseBranch(t *testing.T) {
	steps, _ := testSteps()
	runner, err := workflow.NewRunner(steps, nil, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := runner.Run(context.Background(), workflow.Input{ReleaseBranch: "main"}); err == nil {
		t.Error("expected error for non-release branch")
	}
}
