package pr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStagingPublisher_FullFlow(t *testing.T) {
	dir := t.TempDir()
	pub, err := NewStagingPublisher(dir)
	if err != nil {
		t.Fatalf("NewStagingPublisher: %v", err)
	}
	ctx := context.Background()

	if err := pub.CreateBranch(ctx, "docs/release-2.3.0", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := pub.CreateBranch(ctx, "docs/release-2.3.0", "main"); !errors.Is(err, ErrBranchExists) {
		t.Errorf("second CreateBranch error = %v, want ErrBranchExists", err)
	}

	files := []FileChange{
		{Path: "releases/2.3.0.md", Operation: "create", Content: "# Release 2.3.0\n"},
		{Path: "CHANGELOG.md", Operation: "update", Content: "## 2.3.0\n"},
	}
	if err := pub.CommitFiles(ctx, "docs/release-2.3.0", "Docs: release 2.3.0", files); err != nil {
		t.Fatalf("CommitFiles: %v", err)
	}

	staged := filepath.Join(dir, "docs", "release-2.3.0", "releases", "2.3.0.md")
	data, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "# Release 2.3.0\n" {
		t.Errorf("staged content = %q", data)
	}

	created, err := pub.CreatePR(ctx, Request{
		Title:        "Docs: Release 2.3.0",
		Description:  "Automated documentation updates",
		SourceBranch: "docs/release-2.3.0",
		Labels:       []string{"release-docs"},
	})
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if created.Number != 0 || !strings.HasPrefix(created.URL, "file://") {
		t.Errorf("unexpected PR: %+v", created)
	}
	if created.TargetBranch != "main" {
		t.Errorf("target = %q, want main", created.TargetBranch)
	}

	prFile := filepath.Join(dir, "docs", "release-2.3.0", "PULL_REQUEST.md")
	body, err := os.ReadFile(prFile)
	if err != nil {
		t.Fatalf("read PR file: %v", err)
	}
	if !strings.Contains(string(body), "Labels: release-docs") {
		t.Errorf("PR file missing labels: %q", body)
	}
}

func TestStagingPublisher_EmptyCommit(t *testing.T) {
	pub, err := NewStagingPublisher(t.TempDir())
	if err != nil {
		t.Fatalf("NewStagingPublisher: %v", err)
	}
	if err := pub.CommitFiles(context.Background(), "docs/x", "msg", nil); !errors.Is(err, ErrNoChanges) {
		t.Errorf("CommitFiles error = %v, want ErrNoChanges", err)
	}
}

func TestStagingPublisher_Delete(t *testing.T) {
	dir := t.TempDir()
	pub, _ := NewStagingPublisher(dir)
	ctx := context.Background()

	if err := pub.CreateBranch(ctx, "docs/x", "main"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := pub.CommitFiles(ctx, "docs/x", "add", []FileChange{
		{Path: "old.md", Operation: "create", Content: "x"},
	}); err != nil {
		t.Fatalf("CommitFiles: %v", err)
	}
	if err := pub.CommitFiles(ctx, "docs/x", "remove", []FileChange{
		{Path: "old.md", Operation: "delete"},
	}); err != nil {
		t.Fatalf("CommitFiles delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs", "x", "old.md")); !os.IsNotExist(err) {
		t.Errorf("old.md still staged: %v", err)
	}
}
