// Command reldocs generates release documentation for a release branch.
//
// It gathers issues, pull requests, commits, and prior wiki pages for
// the release, generates release notes and documentation edits, and
// opens a pull request against the docs repository. With --dry-run the
// edits are staged to a local directory instead.
//
// Usage:
//
//	reldocs run --release release/2.3.0 [--base-tag v2.2.0] [--dry-run]
//	reldocs config set <key> <value> [--global]
//	reldocs config list
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/randalmurphal/reldocs/bitbucket"
	"github.com/randalmurphal/reldocs/config"
	"github.com/randalmurphal/reldocs/confluence"
	"github.com/randalmurphal/reldocs/generate"
	"github.com/randalmurphal/reldocs/jira"
	"github.com/randalmurphal/reldocs/notify"
	"github.com/randalmurphal/reldocs/pr"
	"github.com/randalmurphal/reldocs/store"
	"github.com/randalmurphal/reldocs/workflow"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "run":
		return runRelease(args[1:])
	case "config":
		return runConfig(args[1:])
	case "runs":
		return runRuns(args[1:])
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `reldocs generates release documentation for a release branch.

Commands:
  run       Run the release documentation workflow
  runs      List or clean up stored run history
  config    Manage configuration

Run 'reldocs run -h' for workflow flags.
`)
}

func runRelease(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	release := fs.String("release", "", "release branch, e.g. release/2.3.0 (required)")
	baseTag := fs.String("base-tag", "", "base tag to diff from (default: auto-detect)")
	dryRun := fs.Bool("dry-run", false, "stage edits locally instead of opening a PR")
	labels := fs.String("labels", "", "comma-separated PR labels (overrides config)")
	assignees := fs.String("assignees", "", "comma-separated PR assignees (overrides config)")
	model := fs.String("model", "", "LLM model for release notes (overrides config)")
	tier := fs.String("tier", "", "model tier when no explicit model is set: thinking, default, or fast")
	noLLM := fs.Bool("no-llm", false, "render release notes from a template instead of an LLM")
	configPath := fs.String("config", "", "read configuration from this file instead of the usual locations")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *release == "" {
		fmt.Fprintln(os.Stderr, "reldocs: --release is required")
		return 2
	}

	flags := map[string]string{
		config.KeyPRLabels:    *labels,
		config.KeyPRAssignees: *assignees,
		config.KeyLLMModel:    *model,
		config.KeyLLMTier:     *tier,
	}
	var settings *config.Settings
	var err error
	if *configPath != "" {
		resolved := config.NewResolverWithPaths("", *configPath).ResolveWithFlags(flags)
		settings, err = config.FromResolved(resolved)
	} else {
		settings, err = config.LoadWithFlags(flags)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
		return 1
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
		return 1
	}

	steps, err := buildSteps(settings, *dryRun, *noLLM, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
		return 1
	}

	runner, err := workflow.NewRunner(steps, buildNotifier(settings, logger), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	final, err := runner.Run(ctx, workflow.Input{
		ReleaseBranch: *release,
		BaseTag:       *baseTag,
		DryRun:        *dryRun,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
		return 1
	}

	runs := store.New(store.Config{KeepFailed: true})
	if err := runs.SaveRun(final); err != nil {
		logger.Warn("failed to persist run history", "run_id", final.RunID, "error", err)
	}

	printSummary(final, *dryRun, settings.StagingDir)
	if final.Failed() {
		return 1
	}
	return 0
}

// buildSteps wires the workflow collaborators from settings.
func buildSteps(settings *config.Settings, dryRun, noLLM bool, logger *slog.Logger) (*workflow.Steps, error) {
	tracker, err := jira.NewClient(&jira.Config{
		URL:     settings.JiraURL,
		Email:   settings.JiraEmail,
		Token:   settings.JiraToken,
		Project: settings.JiraProject,
		Timeout: settings.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	codeHost, err := bitbucket.NewClient(&bitbucket.Config{
		Workspace:   settings.BitbucketWorkspace,
		RepoSlug:    settings.BitbucketRepo,
		Username:    settings.BitbucketUsername,
		AppPassword: settings.BitbucketAppPassword,
		Timeout:     settings.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	wiki, err := confluence.NewClient(&confluence.Config{
		URL:      settings.ConfluenceURL,
		Email:    settings.ConfluenceEmail,
		Token:    settings.ConfluenceToken,
		SpaceKey: settings.ConfluenceSpace,
		Timeout:  settings.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	var generator *generate.Generator
	if noLLM {
		generator = generate.New(generate.WithLogger(logger))
	} else {
		modelName, err := generate.ResolveModel(settings.LLMModel, settings.LLMTier)
		if err != nil {
			return nil, err
		}
		generator = generate.NewClaudeGenerator(modelName, settings.LLMWorkdir,
			generate.WithLogger(logger))
	}

	publisher, err := buildPublisher(settings, dryRun)
	if err != nil {
		return nil, err
	}

	return &workflow.Steps{
		Tracker:      tracker,
		CodeHost:     codeHost,
		Wiki:         wiki,
		Generator:    generator,
		Publisher:    publisher,
		TargetBranch: settings.TargetBranch,
		Labels:       settings.PRLabels,
		Assignees:    settings.PRAssignees,
		Log:          logger,
	}, nil
}

// buildPublisher selects the docs repo publisher. Dry runs always stage
// to the local filesystem.
func buildPublisher(settings *config.Settings, dryRun bool) (pr.Publisher, error) {
	if dryRun {
		return pr.NewStagingPublisher(settings.StagingDir)
	}

	if settings.DocsRepoURL == "" {
		return nil, fmt.Errorf("docs_repo_url is not configured")
	}

	kind, err := pr.DetectPublisher(settings.DocsRepoURL)
	if err != nil {
		return nil, fmt.Errorf("detect publisher for %s: %w", settings.DocsRepoURL, err)
	}

	switch kind {
	case "github":
		owner, repo, err := pr.ParseRepoFromURL(settings.DocsRepoURL)
		if err != nil {
			return nil, err
		}
		return pr.NewGitHubPublisher(settings.GitHubToken, owner, repo)
	case "gitlab":
		owner, repo, err := pr.ParseRepoFromURL(settings.DocsRepoURL)
		if err != nil {
			return nil, err
		}
		return pr.NewGitLabPublisher(settings.GitLabToken, settings.GitLabURL, owner+"/"+repo)
	case "bitbucket":
		owner, repo, err := pr.ParseRepoFromURL(settings.DocsRepoURL)
		if err != nil {
			return nil, err
		}
		return pr.NewBitbucketPublisher(&pr.BitbucketConfig{
			Workspace:   owner,
			RepoSlug:    repo,
			Username:    settings.BitbucketUsername,
			AppPassword: settings.BitbucketAppPassword,
			Timeout:     settings.HTTPTimeout,
		})
	default:
		return nil, pr.ErrUnknownPublisher
	}
}

// buildNotifier assembles the notifier chain: structured logs always,
// webhook and Slack when configured.
func buildNotifier(settings *config.Settings, logger *slog.Logger) notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if settings.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(settings.WebhookURL, nil))
	}
	if settings.SlackWebhook != "" {
		var opts []notify.SlackOption
		if settings.SlackChannel != "" {
			opts = append(opts, notify.WithSlackChannel(settings.SlackChannel))
		}
		notifiers = append(notifiers, notify.NewSlackNotifier(settings.SlackWebhook, opts...))
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return notify.NewMultiNotifier(notifiers...)
}

func printSummary(final workflow.State, dryRun bool, stagingDir string) {
	fmt.Printf("Run:      %s\n", final.RunID)
	fmt.Printf("Release:  %s (version %s)\n", final.ReleaseBranch, final.Version)

	if final.Failed() {
		fmt.Printf("Status:   failed at %s\n", final.CurrentStep)
		fmt.Printf("Error:    %s\n", final.Error)
	} else {
		fmt.Printf("Status:   %s\n", final.CurrentStep)
	}

	if len(final.GeneratedFiles) > 0 {
		fmt.Printf("Files:    %s\n", strings.Join(final.GeneratedFiles, ", "))
	}
	if final.PRURL != "" {
		if dryRun {
			fmt.Printf("Staged:   %s (see %s)\n", final.PRURL, stagingDir)
		} else {
			fmt.Printf("PR:       %s\n", final.PRURL)
		}
	}
	for _, warning := range final.Warnings {
		fmt.Printf("Warning:  %s\n", warning)
	}
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: reldocs config <set|list> ...")
		return 2
	}

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("config set", flag.ExitOnError)
		global := fs.Bool("global", false, "write to ~/.config/reldocs/config.yaml")
		fs.Parse(args[1:])
		rest := fs.Args()
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: reldocs config set <key> <value> [--global]")
			return 2
		}
		var err error
		if *global {
			err = config.SaveGlobal(rest[0], rest[1])
		} else {
			err = config.SaveLocal(config.NewResolver().GitRoot(), rest[0], rest[1])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
			return 1
		}
		return 0

	case "list":
		resolved := config.NewResolver().Resolve()
		all := resolved.All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value, source := resolved.GetWithSource(key)
			if strings.Contains(key, "token") || strings.Contains(key, "password") {
				value = "********"
			}
			fmt.Printf("%-24s %-8s %s\n", key, source, value)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown config command: %s\n", args[0])
		return 2
	}
}

func runRuns(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: reldocs runs <list|cleanup> ...")
		return 2
	}

	runs := store.New(store.Config{KeepFailed: true})

	switch args[0] {
	case "list":
		infos, err := runs.ListRuns()
		if err != nil {
			fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
			return 1
		}
		if len(infos) == 0 {
			fmt.Println("no stored runs")
			return 0
		}
		for _, info := range infos {
			status := "ok"
			if info.Failed {
				status = "failed"
			}
			fmt.Printf("%-28s %-18s %-8s %s\n",
				info.RunID, info.Release, status, info.StartedAt.Format("2006-01-02 15:04"))
		}
		return 0

	case "cleanup":
		fs := flag.NewFlagSet("runs cleanup", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "report what would be deleted without deleting")
		fs.Parse(args[1:])

		result, err := runs.Cleanup(*dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reldocs: %v\n", err)
			return 1
		}
		verb := "deleted"
		if *dryRun {
			verb = "would delete"
		}
		fmt.Printf("%s %d runs, kept %d (%.1f KiB reclaimed)\n",
			verb, len(result.Deleted), len(result.Kept), float64(result.SpaceSaved)/1024)
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown runs command: %s\n", args[0])
		return 2
	}
}
