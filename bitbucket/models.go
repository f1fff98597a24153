package bitbucket

import (
	"regexp"
	"time"
)

// PullRequest is a release-relevant view of a Bitbucket pull request.
type PullRequest struct {
	ID           int               `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Author       string            `json:"author"`
	SourceBranch string            `json:"sourceBranch"`
	TargetBranch string            `json:"targetBranch"`
	State        string            `json:"state"`
	Created      time.Time         `json:"created"`
	Updated      time.Time         `json:"updated"`
	Links        map[string]string `json:"links,omitempty"`
	LinkedIssues []string          `json:"linkedIssues,omitempty"`
	ChangedFiles []string          `json:"changedFiles,omitempty"`
}

// Commit is a release-relevant view of a Bitbucket commit.
type Commit struct {
	Hash         string            `json:"hash"`
	Message      string            `json:"message"`
	Author       string            `json:"author"`
	Date         time.Time         `json:"date"`
	Links        map[string]string `json:"links,omitempty"`
	ChangedFiles []string          `json:"changedFiles,omitempty"`
}

// Wire types for the Bitbucket 2.0 API.

type pagedResponse[T any] struct {
	Values []T    `json:"values"`
	Next   string `json:"next"`
}

type wireLink struct {
	Href string `json:"href"`
}

type wirePR struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	Author      struct {
		DisplayName string `json:"display_name"`
		Username    string `json:"username"`
	} `json:"author"`
	Source      wireEndpoint        `json:"source"`
	Destination wireEndpoint        `json:"destination"`
	CreatedOn   time.Time           `json:"created_on"`
	UpdatedOn   time.Time           `json:"updated_on"`
	Links       map[string]wireLink `json:"links"`
}

type wireEndpoint struct {
	Branch struct {
		Name string `json:"name"`
	} `json:"branch"`
}

type wireCommit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  struct {
		Raw  string `json:"raw"`
		User struct {
			DisplayName string `json:"display_name"`
		} `json:"user"`
	} `json:"author"`
	Date  time.Time           `json:"date"`
	Links map[string]wireLink `json:"links"`
}

type wireDiffStat struct {
	New struct {
		Path string `json:"path"`
	} `json:"new"`
	Old struct {
		Path string `json:"path"`
	} `json:"old"`
}

// issueKeyRe matches Jira issue keys such as REL-123.
var issueKeyRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

func toPullRequest(w wirePR) PullRequest {
	author := w.Author.DisplayName
	if author == "" {
		author = w.Author.Username
	}
	return PullRequest{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		Author:       author,
		SourceBranch: w.Source.Branch.Name,
		TargetBranch: w.Destination.Branch.Name,
		State:        w.State,
		Created:      w.CreatedOn,
		Updated:      w.UpdatedOn,
		Links:        flattenLinks(w.Links),
		LinkedIssues: issueKeyRe.FindAllString(w.Description, -1),
	}
}

func toCommit(w wireCommit) Commit {
	author := w.Author.User.DisplayName
	if author == "" {
		author = w.Author.Raw
	}
	return Commit{
		Hash:    w.Hash,
		Message: w.Message,
		Author:  author,
		Date:    w.Date,
		Links:   flattenLinks(w.Links),
	}
}

func flattenLinks(links map[string]wireLink) map[string]string {
	if len(links) == 0 {
		return nil
	}
	flat := make(map[string]string, len(links))
	for name, link := range links {
		flat[name] = link.Href
	}
	return flat
}

// diffPath returns the changed file path from a diffstat entry, preferring
// the post-change path.
func diffPath(d wireDiffStat) string {
	if d.New.Path != "" {
		return d.New.Path
	}
	return d.Old.Path
}
