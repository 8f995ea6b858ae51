package repository

import "context"

// GitRepository defines the git operations one package pipeline performs
// against its own isolated checkout.

type GitRepository interface {
	// Root returns the checkout's working directory.
	Root() string
	// ConfigureUser sets the commit identity for this checkout.
	ConfigureUser(ctx context.Context, name, email string) error
	// CreateBranch creates a branch at HEAD and checks it out, keeping any
	// uncommitted worktree changes.
	CreateBranch(ctx context.Context, name string) error
	// IsClean reports whether the worktree has no uncommitted changes.
	IsClean(ctx context.Context) (bool, error)
	// AddAll stages every change in the worktree.
	AddAll(ctx context.Context) error
	// Commit records the staged changes and returns the commit SHA.
	Commit(ctx context.Context, message string) (string, error)
	// DiffHead returns the unified diff of the HEAD commit against its
	// parent.
	DiffHead(ctx context.Context) (string, error)
	// PushBranch pushes the branch to the given remote URL. Force replaces
	// a diverged remote branch, which happens when a previous run for the
	// same version pushed from a different base.
	PushBranch(ctx context.Context, remoteURL, name string, force bool) error
}

// GitCloner produces isolated checkouts, one per package pipeline.
type GitCloner interface {
	Clone(ctx context.Context, url, branch, dir string) (GitRepository, error)
}
