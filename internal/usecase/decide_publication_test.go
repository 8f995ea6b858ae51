package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecidePublicationUseCase_Execute(t *testing.T) {
	target := domain.PackageTarget{Name: "zed-editor"}
	ctx := context.Background()
	updated := domain.UpdatedOutcome(
		domain.VersionSnapshot{Before: "1.0.0", After: "1.1.0"},
		"diff --git a/x b/x\n", false)

	t.Run("Should skip on no change", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo}
		decision, err := uc.Execute(ctx, target, domain.NoChangeOutcome(domain.VersionSnapshot{Before: "1.2.3", After: "1.2.3"}))
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionSkip, decision.Kind)
		ghRepo.AssertNotCalled(t, "FindOpenUpdatePR")
	})
	t.Run("Should skip on a failed outcome without touching the API", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo}
		decision, err := uc.Execute(ctx, target, domain.FailedOutcome(domain.VersionSnapshot{Before: "1.0.0"}, "boom"))
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionSkip, decision.Kind)
		ghRepo.AssertNotCalled(t, "FindOpenUpdatePR")
	})
	t.Run("Should publish when no open PR exists for the pair", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo, RunURL: "https://ci/run/1"}
		ghRepo.On("FindOpenUpdatePR", ctx, "zed-editor", "1.1.0", "auto-update/zed-editor-1.1.0").Return(nil, nil)
		decision, err := uc.Execute(ctx, target, updated)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionPublish, decision.Kind)
		assert.Equal(t, "auto-update/zed-editor-1.1.0", decision.BranchName)
		assert.Equal(t, "zed-editor: 1.0.0 -> 1.1.0", decision.Title)
		assert.Contains(t, decision.Body, "https://ci/run/1")
		meta, metaErr := domain.ParseUpdateMeta(decision.Body)
		require.NoError(t, metaErr)
		assert.Equal(t, "zed-editor", meta.Package)
		assert.Equal(t, "1.0.0", meta.Before)
		assert.Equal(t, "1.1.0", meta.After)
		ghRepo.AssertExpectations(t)
	})
	t.Run("Should skip when an open PR already covers the pair", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo}
		existing := &domain.PullRequestRecord{Number: 7, URL: "https://github.com/o/r/pull/7"}
		ghRepo.On("FindOpenUpdatePR", ctx, "zed-editor", "1.1.0", "auto-update/zed-editor-1.1.0").Return(existing, nil)
		decision, err := uc.Execute(ctx, target, updated)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionSkip, decision.Kind)
		assert.Contains(t, decision.SkipReason, "pull/7")
	})
	t.Run("Should skip an update that captured no diff", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo}
		empty := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "1.0.0", After: "1.1.0"}, "", false)
		decision, err := uc.Execute(ctx, target, empty)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionSkip, decision.Kind)
		assert.Contains(t, decision.SkipReason, "nothing to publish")
		ghRepo.AssertNotCalled(t, "FindOpenUpdatePR")
	})
	t.Run("Should skip downgrades when the upgrade guard is on", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo, RequireUpgrade: true}
		downgrade := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "2.0.0", After: "1.9.0"}, "diff", false)
		decision, err := uc.Execute(ctx, target, downgrade)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionSkip, decision.Kind)
		assert.Contains(t, decision.SkipReason, "does not appear to be an upgrade")
		ghRepo.AssertNotCalled(t, "FindOpenUpdatePR")
	})
	t.Run("Should publish non-semver versions despite the upgrade guard", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo, RequireUpgrade: true}
		dated := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "2024-01-01", After: "2024-06-01"}, "diff", false)
		ghRepo.On("FindOpenUpdatePR", ctx, "zed-editor", "2024-06-01", "auto-update/zed-editor-2024-06-01").Return(nil, nil)
		decision, err := uc.Execute(ctx, target, dated)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionPublish, decision.Kind)
	})
	t.Run("Should propagate existence-check failures", func(t *testing.T) {
		ghRepo := new(mockGithubRepository)
		uc := &DecidePublicationUseCase{GithubRepo: ghRepo}
		ghRepo.On("FindOpenUpdatePR", ctx, "zed-editor", "1.1.0", "auto-update/zed-editor-1.1.0").
			Return(nil, errors.New("api down"))
		_, err := uc.Execute(ctx, target, updated)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api down")
	})
}

func TestBranchName(t *testing.T) {
	target := domain.PackageTarget{Name: "ollama"}
	t.Run("Should be deterministic for the same package and version", func(t *testing.T) {
		outcome := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "0.1.0", After: "0.2.0"}, "some diff", false)
		a := BranchName(target, outcome)
		b := BranchName(target, outcome)
		assert.Equal(t, a, b)
		assert.Equal(t, "auto-update/ollama-0.2.0", a)
	})
	t.Run("Should separate drift branches from real bumps", func(t *testing.T) {
		bump := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "0.1.0", After: "0.1.0"}, "diff A", false)
		drift := domain.UpdatedOutcome(domain.VersionSnapshot{Before: "0.1.0", After: "0.1.0"}, "diff A", true)
		assert.NotEqual(t, BranchName(target, bump), BranchName(target, drift))
		// Same drift content, same branch.
		assert.Equal(t, BranchName(target, drift), BranchName(target, drift))
	})
}
