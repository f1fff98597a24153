package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/randalmurphal/reldocs/flow"
	"github.com/randalmurphal/reldocs/notify"
)

// releaseBranchRe matches release branches and captures the version:
// release/1.2.3 or release/1.2.3-rc.1.
var releaseBranchRe = regexp.MustCompile(`^release/(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?)$`)

// VersionFromBranch extracts the version from a release branch name.
func VersionFromBranch(branch string) (string, error) {
	m := releaseBranchRe.FindStringSubmatch(branch)
	if m == nil {
		return "", fmt.Errorf("not a release branch: %q (want release/<version>)", branch)
	}
	return m[1], nil
}

// Input is what a release run starts from.
type Input struct {
	ReleaseBranch string
	BaseTag       string
	DryRun        bool
}

// Runner drives a complete release documentation run.
type Runner struct {
	steps    *Steps
	graph    *flow.Runner[State]
	notifier notify.Notifier
	log      *slog.Logger
}

// NewRunner compiles the release graph around the given steps.
// notifier may be nil; logger defaults to slog.Default().
func NewRunner(steps *Steps, notifier notify.Notifier, logger *slog.Logger) (*Runner, error) {
	graph, err := BuildGraph(steps)
	if err != nil {
		return nil, fmt.Errorf("build release graph: %w", err)
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{steps: steps, graph: graph, notifier: notifier, log: logger}, nil
}

// Run executes the release graph for the given input. The returned state
// carries partial results even when the run halted; the error return is
// reserved for cancellation and executor defects.
func (r *Runner) Run(ctx context.Context, input Input) (State, error) {
	version, err := VersionFromBranch(input.ReleaseBranch)
	if err != nil {
		return State{}, err
	}

	state, err := NewState(input.ReleaseBranch, version, input.BaseTag, input.DryRun)
	if err != nil {
		return State{}, err
	}

	r.log.Info("release run started",
		"run", state.RunID, "release", input.ReleaseBranch, "version", version, "dry_run", input.DryRun)
	r.emit(ctx, state, notify.Event{
		Type:     notify.EventRunStarted,
		Message:  fmt.Sprintf("Release documentation run started for %s", version),
		Severity: notify.SeverityInfo,
	})

	final, err := r.graph.Run(ctx, state)
	if err != nil {
		r.emit(ctx, state, notify.Event{
			Type:     notify.EventRunFailed,
			Message:  fmt.Sprintf("Release documentation run aborted: %v", err),
			Severity: notify.SeverityError,
		})
		return final, err
	}

	if final.Failed() {
		r.log.Error("release run halted",
			"run", final.RunID, "step", final.CurrentStep, "error", final.Error, "warnings", len(final.Warnings))
		r.emit(ctx, final, notify.Event{
			Type:     notify.EventRunFailed,
			Step:     final.CurrentStep,
			Message:  final.Error,
			Severity: notify.SeverityError,
			Metadata: map[string]any{"warnings": len(final.Warnings)},
		})
		return final, nil
	}

	r.log.Info("release run completed",
		"run", final.RunID, "pr", final.PRNumber, "files", len(final.GeneratedFiles),
		"duration", final.CompletedAt.Sub(final.StartedAt).Round(time.Millisecond))
	r.emit(ctx, final, notify.Event{
		Type:     notify.EventRunCompleted,
		Message:  fmt.Sprintf("Documentation for release %s is ready", version),
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"files": len(final.GeneratedFiles)},
	})
	if final.PRURL != "" {
		r.emit(ctx, final, notify.Event{
			Type:     notify.EventPRCreated,
			Message:  final.PRURL,
			Severity: notify.SeverityInfo,
			Metadata: map[string]any{"pr_number": final.PRNumber},
		})
	}
	return final, nil
}

func (r *Runner) emit(ctx context.Context, state State, event notify.Event) {
	event.RunID = state.RunID
	event.Release = state.ReleaseBranch
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := r.notifier.Notify(ctx, event); err != nil {
		r.log.Warn("notification failed", "type", event.Type, "error", err)
	}
}
