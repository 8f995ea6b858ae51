package repository

import (
	"context"

	"github.com/botnk/upkeep/internal/domain"
)

// GithubRepository defines the hosting API surface the run needs: the
// idempotency lookup, the single PR write, and review reporting.

type GithubRepository interface {
	// FindOpenUpdatePR looks for an open pull request already covering the
	// (package, newVersion) pair. Matching is by the deterministic head
	// branch first, verified and supplemented by the metadata block in PR
	// bodies. Returns nil when none exists.
	FindOpenUpdatePR(ctx context.Context, pkg, newVersion, headBranch string) (*domain.PullRequestRecord, error)
	// CreateOrUpdatePR opens a pull request for the head branch, or updates
	// the existing open one for the same branch. The template section of an
	// existing body is preserved.
	CreateOrUpdatePR(ctx context.Context, head, base, title, body string, draft bool, labels []string) (*domain.PullRequestRecord, error)
	// AddComment appends a comment to a pull request. Prior comments are
	// never touched.
	AddComment(ctx context.Context, prNumber int, body string) error
	// AddLabels adds labels to a pull request.
	AddLabels(ctx context.Context, prNumber int, labels []string) error
	// RemoveLabel removes a label from a pull request; missing labels are
	// not an error.
	RemoveLabel(ctx context.Context, prNumber int, label string) error
}
