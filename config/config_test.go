package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_Defaults(t *testing.T) {
	resolver := NewResolverWithPaths("", "")
	cfg := resolver.Resolve()

	if got := cfg.Get(KeyTargetBranch); got != "main" {
		t.Errorf("%s = %q, want %q", KeyTargetBranch, got, "main")
	}
	if got := cfg.Source(KeyTargetBranch); got != SourceDefault {
		t.Errorf("source = %q, want %q", got, SourceDefault)
	}
	if got := cfg.Get(KeyConfluenceSpace); got != "DOCS" {
		t.Errorf("%s = %q, want %q", KeyConfluenceSpace, got, "DOCS")
	}
}

func TestResolve_EnvOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "config.yaml")
	writeFile(t, globalPath, "jira_url: https://global.atlassian.net\n")

	t.Setenv("RELDOCS_JIRA_URL", "https://env.atlassian.net")

	cfg := NewResolverWithPaths(globalPath, "").Resolve()

	if got := cfg.Get(KeyJiraURL); got != "https://env.atlassian.net" {
		t.Errorf("%s = %q, want env value", KeyJiraURL, got)
	}
	if got := cfg.Source(KeyJiraURL); got != SourceEnv {
		t.Errorf("source = %q, want %q", got, SourceEnv)
	}
}

func TestResolve_LocalOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "config.yaml")
	localPath := filepath.Join(dir, ".reldocs.yaml")
	writeFile(t, globalPath, "confluence_space: GLOBAL\njira_project: REL\n")
	writeFile(t, localPath, "confluence_space: TEAM\n")

	cfg := NewResolverWithPaths(globalPath, localPath).Resolve()

	if got := cfg.Get(KeyConfluenceSpace); got != "TEAM" {
		t.Errorf("%s = %q, want local value", KeyConfluenceSpace, got)
	}
	if got := cfg.Get(KeyJiraProject); got != "REL" {
		t.Errorf("%s = %q, want global value", KeyJiraProject, got)
	}
	if got := cfg.Source(KeyConfluenceSpace); got != SourceLocal {
		t.Errorf("source = %q, want %q", got, SourceLocal)
	}
}

func TestResolve_WarnsOnUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	localPath := filepath.Join(dir, ".reldocs.yaml")
	writeFile(t, localPath, "not_a_real_key: value\n")

	resolver := NewResolverWithPaths("", localPath)
	resolver.SetErrWriter(nil)
	cfg := resolver.Resolve()

	if cfg.Get("not_a_real_key") != "" {
		t.Error("unknown key should be ignored")
	}
	if len(resolver.Warnings) != 1 || !strings.Contains(resolver.Warnings[0], "not_a_real_key") {
		t.Errorf("Warnings = %v", resolver.Warnings)
	}
}

func TestResolveWithFlags(t *testing.T) {
	cfg := NewResolverWithPaths("", "").ResolveWithFlags(map[string]string{
		KeyPRLabels: "hotfix",
		KeyLLMModel: "",
	})

	if got := cfg.Get(KeyPRLabels); got != "hotfix" {
		t.Errorf("%s = %q, want flag value", KeyPRLabels, got)
	}
	if got := cfg.Source(KeyPRLabels); got != SourceFlag {
		t.Errorf("source = %q, want %q", got, SourceFlag)
	}
	// Empty flag values don't override
	if got := cfg.Source(KeyLLMModel); got == SourceFlag {
		t.Error("empty flag should not set source")
	}
}

func TestFromResolved(t *testing.T) {
	t.Setenv("RELDOCS_JIRA_URL", "https://acme.atlassian.net")
	t.Setenv("RELDOCS_PR_LABELS", "docs, release , ")
	t.Setenv("RELDOCS_HTTP_TIMEOUT", "45s")
	t.Setenv("RELDOCS_LLM_TIER", "fast")

	settings, err := FromResolved(NewResolverWithPaths("", "").Resolve())
	if err != nil {
		t.Fatalf("FromResolved: %v", err)
	}

	if settings.JiraURL != "https://acme.atlassian.net" {
		t.Errorf("JiraURL = %q", settings.JiraURL)
	}
	if len(settings.PRLabels) != 2 || settings.PRLabels[0] != "docs" || settings.PRLabels[1] != "release" {
		t.Errorf("PRLabels = %v", settings.PRLabels)
	}
	if settings.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v", settings.HTTPTimeout)
	}
	if settings.TargetBranch != "main" {
		t.Errorf("TargetBranch = %q, want default", settings.TargetBranch)
	}
	if settings.LLMTier != "fast" {
		t.Errorf("LLMTier = %q", settings.LLMTier)
	}
}

func TestFromResolved_BadTimeout(t *testing.T) {
	t.Setenv("RELDOCS_HTTP_TIMEOUT", "soon")
	if _, err := FromResolved(NewResolverWithPaths("", "").Resolve()); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestSettingsValidate(t *testing.T) {
	full := Settings{
		JiraURL: "u", JiraEmail: "e", JiraToken: "t",
		BitbucketWorkspace: "w", BitbucketRepo: "r",
		BitbucketUsername: "u", BitbucketAppPassword: "p",
		ConfluenceURL: "u", ConfluenceEmail: "e", ConfluenceToken: "t",
	}
	if err := full.Validate(); err != nil {
		t.Errorf("complete settings should validate: %v", err)
	}

	missing := full
	missing.ConfluenceToken = ""
	err := missing.Validate()
	if err == nil {
		t.Fatal("expected error for missing confluence token")
	}
	if !strings.Contains(err.Error(), "confluence") {
		t.Errorf("error should name the service: %v", err)
	}
}

func TestKnownKeysSorted(t *testing.T) {
	keys := KnownKeys()
	if len(keys) != len(knownKeys) {
		t.Fatalf("KnownKeys returned %d keys, want %d", len(keys), len(knownKeys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted at %d: %q >= %q", i, keys[i-1], keys[i])
		}
	}
}
