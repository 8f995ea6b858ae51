package usecase

import (
	"context"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/service"
	"github.com/stretchr/testify/mock"
)

// Mock for ProberService
type mockProberService struct {
	mock.Mock
}

func (m *mockProberService) Probe(ctx context.Context, target domain.PackageTarget, repoPath string) (string, error) {
	args := m.Called(ctx, target, repoPath)
	return args.String(0), args.Error(1)
}

// Mock for UpdaterService
type mockUpdaterService struct {
	mock.Mock
}

func (m *mockUpdaterService) Invoke(
	ctx context.Context,
	target domain.PackageTarget,
	repoPath string,
	env service.UpdaterEnv,
) (domain.ProcessResult, error) {
	args := m.Called(ctx, target, repoPath, env)
	return args.Get(0).(domain.ProcessResult), args.Error(1)
}

// Mock for ReviewerService
type mockReviewerService struct {
	mock.Mock
}

func (m *mockReviewerService) Review(
	ctx context.Context,
	target domain.PackageTarget,
	repoPath string,
) (domain.ReviewVerdict, string, error) {
	args := m.Called(ctx, target, repoPath)
	return args.Get(0).(domain.ReviewVerdict), args.String(1), args.Error(2)
}

// Mock for GitRepository
type mockGitRepository struct {
	mock.Mock
}

func (m *mockGitRepository) Root() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockGitRepository) ConfigureUser(ctx context.Context, name, email string) error {
	args := m.Called(ctx, name, email)
	return args.Error(0)
}

func (m *mockGitRepository) CreateBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepository) IsClean(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepository) AddAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockGitRepository) Commit(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) DiffHead(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) PushBranch(ctx context.Context, remoteURL, name string, force bool) error {
	args := m.Called(ctx, remoteURL, name, force)
	return args.Error(0)
}

// Mock for GithubRepository
type mockGithubRepository struct {
	mock.Mock
}

func (m *mockGithubRepository) FindOpenUpdatePR(
	ctx context.Context,
	pkg, newVersion, headBranch string,
) (*domain.PullRequestRecord, error) {
	args := m.Called(ctx, pkg, newVersion, headBranch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequestRecord), args.Error(1)
}

func (m *mockGithubRepository) CreateOrUpdatePR(
	ctx context.Context,
	head, base, title, body string,
	draft bool,
	labels []string,
) (*domain.PullRequestRecord, error) {
	args := m.Called(ctx, head, base, title, body, draft, labels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequestRecord), args.Error(1)
}

func (m *mockGithubRepository) AddComment(ctx context.Context, prNumber int, body string) error {
	args := m.Called(ctx, prNumber, body)
	return args.Error(0)
}

func (m *mockGithubRepository) AddLabels(ctx context.Context, prNumber int, labels []string) error {
	args := m.Called(ctx, prNumber, labels)
	return args.Error(0)
}

func (m *mockGithubRepository) RemoveLabel(ctx context.Context, prNumber int, label string) error {
	args := m.Called(ctx, prNumber, label)
	return args.Error(0)
}
