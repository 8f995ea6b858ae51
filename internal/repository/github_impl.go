package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/botnk/upkeep/internal/config"
	"github.com/botnk/upkeep/internal/domain"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

// githubRepository is the implementation of the GithubRepository interface.
type githubRepository struct {
	client    *github.Client
	owner     string
	repo      string
	forkOwner string
}

// NewGithubRepository creates a new GithubRepository with validation.
// forkOwner is the account update branches live under; when it differs
// from owner, PR heads are qualified with it.
func NewGithubRepository(token, owner, repo, forkOwner string) (GithubRepository, error) {
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	if forkOwner == "" {
		forkOwner = owner
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return &githubRepository{
		client:    github.NewClient(tc),
		owner:     owner,
		repo:      repo,
		forkOwner: forkOwner,
	}, nil
}

// qualifiedHead returns the head reference for list/create calls,
// qualified with the fork owner for cross-repository pull requests.
func (r *githubRepository) qualifiedHead(branch string) string {
	return fmt.Sprintf("%s:%s", r.forkOwner, branch)
}

func recordFromPR(pr *github.PullRequest, created bool) *domain.PullRequestRecord {
	return &domain.PullRequestRecord{
		Number:  pr.GetNumber(),
		URL:     pr.GetHTMLURL(),
		Branch:  pr.GetHead().GetRef(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		Created: created,
	}
}

// FindOpenUpdatePR looks for an open PR already covering the
// (package, newVersion) pair.
func (r *githubRepository) FindOpenUpdatePR(
	ctx context.Context,
	pkg, newVersion, headBranch string,
) (*domain.PullRequestRecord, error) {
	// Exact lookup by the deterministic head branch.
	prs, _, err := r.client.PullRequests.List(ctx, r.owner, r.repo, &github.PullRequestListOptions{
		Head:  r.qualifiedHead(headBranch),
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) > 0 {
		// A PR on our deterministic branch covers the pair even when its
		// body lost the marker; treat it as existing rather than risk a
		// duplicate.
		return recordFromPR(prs[0], false), nil
	}
	// Fallback: scan recent open PRs for a matching metadata block. This
	// catches PRs whose branch was renamed after creation.
	open, _, err := r.client.PullRequests.List(ctx, r.owner, r.repo, &github.PullRequestListOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan open pull requests: %w", err)
	}
	for _, pr := range open {
		if matchesUpdate(pr.GetBody(), pkg, newVersion) {
			return recordFromPR(pr, false), nil
		}
	}
	return nil, nil
}

func matchesUpdate(body, pkg, newVersion string) bool {
	meta, err := domain.ParseUpdateMeta(body)
	if err != nil {
		return false
	}
	return meta.Package == pkg && meta.After == newVersion
}

// CreateOrUpdatePR opens a PR for the head branch, or updates the
// existing open one.
func (r *githubRepository) CreateOrUpdatePR(
	ctx context.Context,
	head, base, title, body string,
	draft bool,
	labels []string,
) (*domain.PullRequestRecord, error) {
	prs, _, err := r.client.PullRequests.List(ctx, r.owner, r.repo, &github.PullRequestListOptions{
		Head:  r.qualifiedHead(head),
		Base:  base,
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) > 0 {
		existing := prs[0]
		// Keep whatever the existing body carries below the template
		// marker (checklists filled in by humans, etc).
		if tmpl, ok := domain.ExtractTemplate(existing.GetBody()); ok {
			if _, hasOwn := domain.ExtractTemplate(body); !hasOwn {
				body = domain.ComposeBody(body, tmpl)
			}
		}
		updated, _, err := r.client.PullRequests.Edit(ctx, r.owner, r.repo, existing.GetNumber(), &github.PullRequest{
			Title: &title,
			Body:  &body,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update pull request: %w", err)
		}
		if err := r.addLabelsIfAny(ctx, updated.GetNumber(), labels); err != nil {
			return nil, err
		}
		return recordFromPR(updated, false), nil
	}
	pr, _, err := r.client.PullRequests.Create(ctx, r.owner, r.repo, &github.NewPullRequest{
		Title:               &title,
		Body:                &body,
		Head:                github.Ptr(r.qualifiedHead(head)),
		Base:                &base,
		Draft:               &draft,
		MaintainerCanModify: github.Ptr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	if err := r.addLabelsIfAny(ctx, pr.GetNumber(), labels); err != nil {
		return nil, err
	}
	return recordFromPR(pr, true), nil
}

func (r *githubRepository) addLabelsIfAny(ctx context.Context, prNumber int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	if _, _, err := r.client.Issues.AddLabelsToIssue(ctx, r.owner, r.repo, prNumber, labels); err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// AddComment appends a comment to a pull request.
func (r *githubRepository) AddComment(ctx context.Context, prNumber int, body string) error {
	comment := &github.IssueComment{
		Body: github.Ptr(body),
	}
	_, _, err := r.client.Issues.CreateComment(ctx, r.owner, r.repo, prNumber, comment)
	if err != nil {
		return fmt.Errorf("failed to add comment to PR #%d: %w", prNumber, err)
	}
	return nil
}

// AddLabels adds labels to a pull request.
func (r *githubRepository) AddLabels(ctx context.Context, prNumber int, labels []string) error {
	return r.addLabelsIfAny(ctx, prNumber, labels)
}

// RemoveLabel removes a label from a pull request.
func (r *githubRepository) RemoveLabel(ctx context.Context, prNumber int, label string) error {
	resp, err := r.client.Issues.RemoveLabelForIssue(ctx, r.owner, r.repo, prNumber, label)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil
		}
		return fmt.Errorf("failed to remove label %s from PR #%d: %w", label, prNumber, err)
	}
	return nil
}
