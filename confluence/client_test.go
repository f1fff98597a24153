package confluence

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testConfig(baseURL string) *Config {
	return &Config{
		URL:   baseURL,
		Email: "docs@example.com",
		Token: "secret",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URL: "https://x.atlassian.net/wiki", Email: "a@b.c", Token: "t"}, false},
		{"missing url", Config{Email: "a@b.c", Token: "t"}, true},
		{"missing token", Config{URL: "https://x.atlassian.net/wiki", Email: "a@b.c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReleaseNotesPages(t *testing.T) {
	var gotCQL, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/content/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotCQL = r.URL.Query().Get("cql")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{
			"results": [{
				"id": "1001",
				"title": "Release Notes 2.3.0",
				"space": {"key": "DOCS"},
				"body": {"storage": {"value": "<p>notes</p>"}},
				"version": {"number": 7, "when": "2026-08-01T09:00:00.000Z"},
				"metadata": {"labels": {"results": [{"name": "release-notes"}]}}
			}],
			"size": 1
		}`)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	pages, err := client.ReleaseNotesPages(context.Background())
	if err != nil {
		t.Fatalf("ReleaseNotesPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	p := pages[0]
	if p.Title != "Release Notes 2.3.0" || p.Version != 7 || p.Content != "<p>notes</p>" {
		t.Errorf("unexpected page: %+v", p)
	}
	if !strings.Contains(gotCQL, `space = "DOCS"`) || !strings.Contains(gotCQL, `title ~ "release notes"`) {
		t.Errorf("cql = %q", gotCQL)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("docs@example.com:secret"))
	if gotAuth != wantAuth {
		t.Errorf("auth = %q, want %q", gotAuth, wantAuth)
	}
}

func TestPagesByLabels_Deduplicates(t *testing.T) {
	var cqls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cql := r.URL.Query().Get("cql")
		cqls = append(cqls, cql)
		// Page 2001 carries both labels and must come back once.
		if strings.Contains(cql, `label = "auth"`) {
			fmt.Fprint(w, `{"results": [
				{"id": "2001", "title": "Auth Guide", "space": {"key": "DOCS"}},
				{"id": "2002", "title": "Login Flow", "space": {"key": "DOCS"}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"results": [
			{"id": "2001", "title": "Auth Guide", "space": {"key": "DOCS"}}
		]}`)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	pages, err := client.PagesByLabels(context.Background(), []string{"auth", "security"})
	if err != nil {
		t.Fatalf("PagesByLabels: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].ID != "2001" || pages[1].ID != "2002" {
		t.Errorf("page order = %s, %s", pages[0].ID, pages[1].ID)
	}
	if len(cqls) != 2 {
		t.Fatalf("got %d searches, want 2", len(cqls))
	}
}

func TestPagesByLabels_CustomSpace(t *testing.T) {
	var gotCQL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCQL = r.URL.Query().Get("cql")
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.SpaceKey = "ENG"
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.PagesByLabels(context.Background(), []string{"billing"}); err != nil {
		t.Fatalf("PagesByLabels: %v", err)
	}
	if !strings.Contains(gotCQL, `space = "ENG"`) {
		t.Errorf("cql = %q", gotCQL)
	}
	if _, err := url.ParseQuery("cql=" + url.QueryEscape(gotCQL)); err != nil {
		t.Errorf("cql not query-safe: %v", err)
	}
}
