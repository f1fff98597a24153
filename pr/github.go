package pr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubPublisher implements Publisher for GitHub docs repositories.
type GitHubPublisher struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubPublisher creates a GitHub publisher.
// token is a personal access token or an installation token.
func NewGitHubPublisher(token, owner, repo string) (*GitHubPublisher, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHubPublisher{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// NewGitHubAppPublisher creates a GitHub publisher authenticated as a
// GitHub App installation. privateKeyPEM is the app's RSA signing key.
func NewGitHubAppPublisher(appID, installationID int64, privateKeyPEM []byte, owner, repo string) (*GitHubPublisher, error) {
	if appID == 0 || installationID == 0 {
		return nil, fmt.Errorf("app ID and installation ID are required")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse app private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer: strconv.FormatInt(appID, 10),
		// Backdate against clock skew; GitHub caps app JWTs at 10 minutes.
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	appJWT, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("sign app JWT: %w", err)
	}

	appClient := github.NewClient(nil).WithAuthToken(appJWT)
	token, _, err := appClient.Apps.CreateInstallationToken(context.Background(), installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", err)
	}

	return NewGitHubPublisher(token.GetToken(), owner, repo)
}

// CreateBranch creates branch off base.
func (p *GitHubPublisher) CreateBranch(ctx context.Context, branch, base string) error {
	baseRef, _, err := p.client.Git.GetRef(ctx, p.owner, p.repo, "refs/heads/"+base)
	if err != nil {
		return fmt.Errorf("get base ref %s: %w", base, err)
	}

	_, resp, err := p.client.Git.CreateRef(ctx, p.owner, p.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: baseRef.Object,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return ErrBranchExists
		}
		return fmt.Errorf("create branch %s: %w", branch, err)
	}

	slog.Debug("created docs branch", "branch", branch, "base", base)
	return nil
}

// CommitFiles commits the file changes as a single commit on branch.
// Creates and updates go through the git tree API; deletes use the
// contents API because the tree API cannot express a removal without
// re-listing the whole tree.
func (p *GitHubPublisher) CommitFiles(ctx context.Context, branch, message string, files []FileChange) error {
	if len(files) == 0 {
		return ErrNoChanges
	}

	var entries []*github.TreeEntry
	var deletes []FileChange
	for _, f := range files {
		if f.Operation == "delete" {
			deletes = append(deletes, f)
			continue
		}
		entries = append(entries, &github.TreeEntry{
			Path:    github.String(f.Path),
			Mode:    github.String("100644"),
			Type:    github.String("blob"),
			Content: github.String(f.Content),
		})
	}

	if len(entries) > 0 {
		ref, _, err := p.client.Git.GetRef(ctx, p.owner, p.repo, "refs/heads/"+branch)
		if err != nil {
			return fmt.Errorf("get branch ref %s: %w", branch, err)
		}
		headSHA := ref.Object.GetSHA()

		tree, _, err := p.client.Git.CreateTree(ctx, p.owner, p.repo, headSHA, entries)
		if err != nil {
			return fmt.Errorf("create tree: %w", err)
		}

		commit, _, err := p.client.Git.CreateCommit(ctx, p.owner, p.repo, &github.Commit{
			Message: github.String(message),
			Tree:    tree,
			Parents: []*github.Commit{{SHA: github.String(headSHA)}},
		}, nil)
		if err != nil {
			return fmt.Errorf("create commit: %w", err)
		}

		ref.Object.SHA = commit.SHA
		if _, _, err := p.client.Git.UpdateRef(ctx, p.owner, p.repo, ref, false); err != nil {
			return fmt.Errorf("update branch ref: %w", err)
		}
	}

	for _, f := range deletes {
		contents, _, _, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, f.Path,
			&github.RepositoryContentGetOptions{Ref: branch})
		if err != nil {
			return fmt.Errorf("stat %s for delete: %w", f.Path, err)
		}
		_, _, err = p.client.Repositories.DeleteFile(ctx, p.owner, p.repo, f.Path, &github.RepositoryContentFileOptions{
			Message: github.String(message),
			SHA:     contents.SHA,
			Branch:  github.String(branch),
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", f.Path, err)
		}
	}

	slog.Debug("committed docs changes", "branch", branch, "files", len(files))
	return nil
}

// CreatePR opens a pull request for the branch.
func (p *GitHubPublisher) CreatePR(ctx context.Context, req Request) (*PullRequest, error) {
	base := req.TargetBranch
	if base == "" {
		base = "main"
	}

	created, resp, err := p.client.PullRequests.Create(ctx, p.owner, p.repo, &github.NewPullRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Description),
		Head:  github.String(req.SourceBranch),
		Base:  github.String(base),
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(err.Error(), "already exists") {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create pull request: %w", err)
	}

	number := created.GetNumber()
	if len(req.Labels) > 0 {
		if _, _, err := p.client.Issues.AddLabelsToIssue(ctx, p.owner, p.repo, number, req.Labels); err != nil {
			slog.Warn("failed to add labels", "pr", number, "error", err)
		}
	}
	if len(req.Assignees) > 0 {
		if _, _, err := p.client.Issues.AddAssignees(ctx, p.owner, p.repo, number, req.Assignees); err != nil {
			slog.Warn("failed to add assignees", "pr", number, "error", err)
		}
	}

	return &PullRequest{
		Number:       number,
		URL:          created.GetHTMLURL(),
		Title:        created.GetTitle(),
		SourceBranch: req.SourceBranch,
		TargetBranch: base,
	}, nil
}
