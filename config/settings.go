package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/reldocs/errors"
)

// Configuration keys. Environment variables use the RELDOCS_ prefix
// with the key upper-cased, e.g. RELDOCS_JIRA_URL.
const (
	KeyJiraURL     = "jira_url"
	KeyJiraEmail   = "jira_email"
	KeyJiraToken   = "jira_token"
	KeyJiraProject = "jira_project"

	KeyBitbucketWorkspace   = "bitbucket_workspace"
	KeyBitbucketRepo        = "bitbucket_repo"
	KeyBitbucketUsername    = "bitbucket_username"
	KeyBitbucketAppPassword = "bitbucket_app_password"

	KeyConfluenceURL   = "confluence_url"
	KeyConfluenceEmail = "confluence_email"
	KeyConfluenceToken = "confluence_token"
	KeyConfluenceSpace = "confluence_space"

	KeyDocsRepoURL  = "docs_repo_url"
	KeyTargetBranch = "docs_target_branch"
	KeyGitHubToken  = "github_token"
	KeyGitLabToken  = "gitlab_token"
	KeyGitLabURL    = "gitlab_url"

	KeyLLMModel   = "llm_model"
	KeyLLMTier    = "llm_tier"
	KeyLLMWorkdir = "llm_workdir"

	KeyWebhookURL   = "notify_webhook_url"
	KeySlackWebhook = "slack_webhook_url"
	KeySlackChannel = "slack_channel"

	KeyPRLabels    = "pr_labels"
	KeyPRAssignees = "pr_assignees"
	KeyStagingDir  = "staging_dir"
	KeyHTTPTimeout = "http_timeout"
)

// defaults provides the built-in values.
var defaults = map[string]string{
	KeyConfluenceSpace: "DOCS",
	KeyTargetBranch:    "main",
	KeyPRLabels:        "documentation,release",
	KeyStagingDir:      ".reldocs/staging",
	KeyHTTPTimeout:     "30s",
}

// knownKeys is the set of keys the resolver accepts from files and env.
var knownKeys = map[string]bool{
	KeyJiraURL:     true,
	KeyJiraEmail:   true,
	KeyJiraToken:   true,
	KeyJiraProject: true,

	KeyBitbucketWorkspace:   true,
	KeyBitbucketRepo:        true,
	KeyBitbucketUsername:    true,
	KeyBitbucketAppPassword: true,

	KeyConfluenceURL:   true,
	KeyConfluenceEmail: true,
	KeyConfluenceToken: true,
	KeyConfluenceSpace: true,

	KeyDocsRepoURL:  true,
	KeyTargetBranch: true,
	KeyGitHubToken:  true,
	KeyGitLabToken:  true,
	KeyGitLabURL:    true,

	KeyLLMModel:   true,
	KeyLLMTier:    true,
	KeyLLMWorkdir: true,

	KeyWebhookURL:   true,
	KeySlackWebhook: true,
	KeySlackChannel: true,

	KeyPRLabels:    true,
	KeyPRAssignees: true,
	KeyStagingDir:  true,
	KeyHTTPTimeout: true,
}

// KnownKeys returns all accepted configuration keys, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Settings is the typed view of the resolved configuration.
type Settings struct {
	JiraURL     string
	JiraEmail   string
	JiraToken   string
	JiraProject string

	BitbucketWorkspace   string
	BitbucketRepo        string
	BitbucketUsername    string
	BitbucketAppPassword string

	ConfluenceURL   string
	ConfluenceEmail string
	ConfluenceToken string
	ConfluenceSpace string

	DocsRepoURL  string
	TargetBranch string
	GitHubToken  string
	GitLabToken  string
	GitLabURL    string

	LLMModel   string
	LLMTier    string
	LLMWorkdir string

	WebhookURL   string
	SlackWebhook string
	SlackChannel string

	PRLabels    []string
	PRAssignees []string
	StagingDir  string
	HTTPTimeout time.Duration
}

// Load resolves configuration from all sources and returns typed settings.
func Load() (*Settings, error) {
	return FromResolved(NewResolver().Resolve())
}

// LoadWithFlags resolves configuration with flag overrides applied.
func LoadWithFlags(flags map[string]string) (*Settings, error) {
	return FromResolved(NewResolver().ResolveWithFlags(flags))
}

// FromResolved converts a resolved configuration into typed settings.
func FromResolved(cfg *Resolved) (*Settings, error) {
	timeout, err := time.ParseDuration(cfg.Get(KeyHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("config: invalid %s %q: %w", KeyHTTPTimeout, cfg.Get(KeyHTTPTimeout), err)
	}

	return &Settings{
		JiraURL:     cfg.Get(KeyJiraURL),
		JiraEmail:   cfg.Get(KeyJiraEmail),
		JiraToken:   cfg.Get(KeyJiraToken),
		JiraProject: cfg.Get(KeyJiraProject),

		BitbucketWorkspace:   cfg.Get(KeyBitbucketWorkspace),
		BitbucketRepo:        cfg.Get(KeyBitbucketRepo),
		BitbucketUsername:    cfg.Get(KeyBitbucketUsername),
		BitbucketAppPassword: cfg.Get(KeyBitbucketAppPassword),

		ConfluenceURL:   cfg.Get(KeyConfluenceURL),
		ConfluenceEmail: cfg.Get(KeyConfluenceEmail),
		ConfluenceToken: cfg.Get(KeyConfluenceToken),
		ConfluenceSpace: cfg.Get(KeyConfluenceSpace),

		DocsRepoURL:  cfg.Get(KeyDocsRepoURL),
		TargetBranch: cfg.Get(KeyTargetBranch),
		GitHubToken:  cfg.Get(KeyGitHubToken),
		GitLabToken:  cfg.Get(KeyGitLabToken),
		GitLabURL:    cfg.Get(KeyGitLabURL),

		LLMModel:   cfg.Get(KeyLLMModel),
		LLMTier:    cfg.Get(KeyLLMTier),
		LLMWorkdir: cfg.Get(KeyLLMWorkdir),

		WebhookURL:   cfg.Get(KeyWebhookURL),
		SlackWebhook: cfg.Get(KeySlackWebhook),
		SlackChannel: cfg.Get(KeySlackChannel),

		PRLabels:    splitList(cfg.Get(KeyPRLabels)),
		PRAssignees: splitList(cfg.Get(KeyPRAssignees)),
		StagingDir:  cfg.Get(KeyStagingDir),
		HTTPTimeout: timeout,
	}, nil
}

// Validate checks that every gather service has working credentials.
// Publisher credentials are checked separately since dry runs don't
// need them.
func (s *Settings) Validate() error {
	if s.JiraURL == "" || s.JiraEmail == "" || s.JiraToken == "" {
		return errors.NewMissingCredentialsError("jira")
	}
	if s.BitbucketWorkspace == "" || s.BitbucketRepo == "" ||
		s.BitbucketUsername == "" || s.BitbucketAppPassword == "" {
		return errors.NewMissingCredentialsError("bitbucket")
	}
	if s.ConfluenceURL == "" || s.ConfluenceEmail == "" || s.ConfluenceToken == "" {
		return errors.NewMissingCredentialsError("confluence")
	}
	return nil
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) any {
	lower := strings.ToLower(value)
	if lower == "true" {
		return true
	}
	if lower == "false" {
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}
