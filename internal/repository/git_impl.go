package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// gitRepository is the go-git implementation of GitRepository, bound to a
// single checkout directory.
type gitRepository struct {
	repo *git.Repository
	root string
	auth *http.BasicAuth
}

// gitCloner creates checkouts authenticated with the given token.
type gitCloner struct {
	user  string
	token string
}

// NewGitCloner creates a GitCloner. The token is passed explicitly rather
// than read from the environment so every checkout carries its own
// credentials.
func NewGitCloner(user, token string) GitCloner {
	return &gitCloner{user: user, token: token}
}

func (c *gitCloner) authMethod() *http.BasicAuth {
	if c.token == "" {
		return nil
	}
	// GitHub accepts any username with a token password.
	user := c.user
	if user == "" {
		user = "x-access-token"
	}
	return &http.BasicAuth{Username: user, Password: c.token}
}

// Clone clones url's branch into dir and returns the checkout.
func (c *gitCloner) Clone(ctx context.Context, url, branch, dir string) (GitRepository, error) {
	auth := c.authMethod()
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return &gitRepository{repo: repo, root: dir, auth: auth}, nil
}

// OpenGitRepository opens an existing checkout, mainly for tests and local
// runs against a prepared working copy.
func OpenGitRepository(dir, user, token string) (GitRepository, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	var auth *http.BasicAuth
	if token != "" {
		if user == "" {
			user = "x-access-token"
		}
		auth = &http.BasicAuth{Username: user, Password: token}
	}
	return &gitRepository{repo: repo, root: dir, auth: auth}, nil
}

func (r *gitRepository) Root() string {
	return r.root
}

// ConfigureUser sets the commit identity for this checkout.
func (r *gitRepository) ConfigureUser(_ context.Context, name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	return r.repo.Storer.SetConfig(cfg)
}

// CreateBranch creates a branch at HEAD and checks it out. Worktree
// changes are kept so the updater's edits survive the switch.
func (r *gitRepository) CreateBranch(_ context.Context, name string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	branchRef := plumbing.NewBranchReferenceName(name)
	createOpts := &git.CheckoutOptions{
		Branch: branchRef,
		Create: true,
		Keep:   true,
	}
	if _, err := r.repo.Reference(branchRef, false); err == nil {
		// Branch exists from an earlier run; reuse it.
		createOpts.Create = false
	}
	if err := w.Checkout(createOpts); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (r *gitRepository) IsClean(_ context.Context) (bool, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// AddAll stages every change in the worktree.
func (r *gitRepository) AddAll(_ context.Context) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the staged changes and returns the commit SHA.
func (r *gitRepository) Commit(_ context.Context, message string) (string, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	cfg, err := r.repo.Config()
	if err != nil {
		return "", fmt.Errorf("failed to get config: %w", err)
	}
	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  cfg.User.Name,
			Email: cfg.User.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}
	return hash.String(), nil
}

// DiffHead returns the unified diff of HEAD against its parent.
func (r *gitRepository) DiffHead(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return "", fmt.Errorf("failed to get parent commit: %w", err)
	}
	patch, err := parent.PatchContext(ctx, commit)
	if err != nil {
		return "", fmt.Errorf("failed to compute patch: %w", err)
	}
	return patch.String(), nil
}

// PushBranch pushes the branch to the given remote URL.
func (r *gitRepository) PushBranch(ctx context.Context, remoteURL, name string, force bool) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteURL: remoteURL,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", name, name)),
		},
		Auth:  r.auth,
		Force: force,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push branch %s: %w", name, err)
	}
	return nil
}
