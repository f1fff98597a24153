package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(&Config{
		BaseURL:     srv.URL,
		Workspace:   "acme",
		RepoSlug:    "platform",
		Username:    "bot",
		AppPassword: "secret",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(&Config{Workspace: "acme"}); err == nil {
		t.Error("NewClient should reject an incomplete config")
	}
}

func TestPullRequestsInto(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/pullrequests"):
			q := r.URL.Query().Get("q")
			if !strings.Contains(q, `destination.branch.name = "release/1.2.3"`) {
				t.Errorf("q = %q", q)
			}
			fmt.Fprint(w, `{"values":[{
				"id": 42,
				"title": "Add export API",
				"description": "Implements REL-7 and REL-8",
				"state": "MERGED",
				"author": {"display_name": "Dana"},
				"source": {"branch": {"name": "feature/export"}},
				"destination": {"branch": {"name": "release/1.2.3"}},
				"created_on": "2024-03-01T10:00:00+00:00",
				"updated_on": "2024-03-02T10:00:00+00:00",
				"links": {"html": {"href": "https://bitbucket.org/acme/platform/pull-requests/42"}}
			}]}`)
		case strings.HasSuffix(r.URL.Path, "/pullrequests/42/diffstat"):
			fmt.Fprint(w, `{"values":[
				{"new": {"path": "api/export.go"}},
				{"old": {"path": "api/removed.go"}}
			]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	prs, err := c.PullRequestsInto(context.Background(), "release/1.2.3")
	if err != nil {
		t.Fatalf("PullRequestsInto() error = %v", err)
	}
	if len(prs) != 1 {
		t.Fatalf("len(prs) = %d, want 1", len(prs))
	}
	pr := prs[0]
	if pr.ID != 42 || pr.Author != "Dana" || pr.State != "MERGED" {
		t.Errorf("pr = %+v", pr)
	}
	if len(pr.LinkedIssues) != 2 || pr.LinkedIssues[0] != "REL-7" {
		t.Errorf("LinkedIssues = %v", pr.LinkedIssues)
	}
	if len(pr.ChangedFiles) != 2 || pr.ChangedFiles[0] != "api/export.go" || pr.ChangedFiles[1] != "api/removed.go" {
		t.Errorf("ChangedFiles = %v", pr.ChangedFiles)
	}
	if pr.Links["html"] == "" {
		t.Error("html link should be flattened")
	}
}

func TestCommitsOn(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/commits/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("exclude"); got != "refs/tags/v1.2.2" {
			t.Errorf("exclude = %q", got)
		}
		fmt.Fprint(w, `{"values":[{
			"hash": "abc123",
			"message": "Fix pagination",
			"author": {"raw": "Lee <lee@example.com>", "user": {"display_name": "Lee"}},
			"date": "2024-03-03T08:00:00+00:00"
		}]}`)
	}))

	commits, err := c.CommitsOn(context.Background(), "release/1.2.3", "v1.2.2")
	if err != nil {
		t.Fatalf("CommitsOn() error = %v", err)
	}
	if len(commits) != 1 {
		t.Fatalf("len(commits) = %d, want 1", len(commits))
	}
	if commits[0].Hash != "abc123" || commits[0].Author != "Lee" {
		t.Errorf("commit = %+v", commits[0])
	}
}

func TestCommitsOn_NoBaseTag(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("exclude") {
			t.Error("exclude should be omitted without a base tag")
		}
		fmt.Fprint(w, `{"values":[]}`)
	}))

	commits, err := c.CommitsOn(context.Background(), "release/1.2.3", "")
	if err != nil {
		t.Fatalf("CommitsOn() error = %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("len(commits) = %d, want 0", len(commits))
	}
}
