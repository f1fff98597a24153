package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestClient_GetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, `{"name":"release-1.2.3"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Service: "test"})
	var out struct {
		Name string `json:"name"`
	}
	if err := c.Get(context.Background(), "/thing", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Name != "release-1.2.3" {
		t.Errorf("Name = %q", out.Name)
	}
}

func TestClient_AuthHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL: srv.URL,
		Service: "test",
		Auth: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer token")
		},
	})
	if err := c.Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Service: "test", RetryWait: 1})
	if err := c.Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errorMessages":["no such issue"]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Service: "jira", RetryWait: 1})
	err := c.Get(context.Background(), "/issue/REL-1", nil)
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "no such issue" {
		t.Errorf("err = %v, want APIError with parsed message", err)
	}
}

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("branch") != "docs/release-1.2.3" {
			t.Errorf("branch = %q", r.PostForm.Get("branch"))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Service: "test"})
	form := url.Values{}
	form.Set("branch", "docs/release-1.2.3")
	if err := c.PostForm(context.Background(), "/src", form, nil); err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
}

func TestCollectPages(t *testing.T) {
	pages := [][]int{{1, 2}, {3, 4}, {5}}
	got, err := CollectPages(context.Background(), 0, func(ctx context.Context, page int) ([]int, bool, error) {
		return pages[page], page < len(pages)-1, nil
	})
	if err != nil {
		t.Fatalf("CollectPages() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestCollectPages_Limit(t *testing.T) {
	got, err := CollectPages(context.Background(), 3, func(ctx context.Context, page int) ([]int, bool, error) {
		return []int{page*2 + 1, page*2 + 2}, true, nil
	})
	if err != nil {
		t.Fatalf("CollectPages() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}
