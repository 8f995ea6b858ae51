package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportReviewUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	target := domain.PackageTarget{Name: "ollama"}
	pr := &domain.PullRequestRecord{Number: 12, URL: "https://github.com/o/r/pull/12"}

	t.Run("Should comment and relabel on a passing build", func(t *testing.T) {
		reviewer := new(mockReviewerService)
		ghRepo := new(mockGithubRepository)
		uc := &ReportReviewUseCase{Reviewer: reviewer, GithubRepo: ghRepo}
		reviewer.On("Review", ctx, target, "/work/ollama").Return(domain.ReviewPass, "build ok\n", nil)
		ghRepo.On("AddComment", ctx, 12, mock.AnythingOfType("string")).Return(nil)
		ghRepo.On("AddLabels", ctx, 12, []string{LabelBuildPassing}).Return(nil)
		ghRepo.On("RemoveLabel", ctx, 12, LabelBuildFailing).Return(nil)

		report, err := uc.Execute(ctx, target, pr, "/work/ollama")
		require.NoError(t, err)
		assert.True(t, report.Passed())
		assert.Equal(t, 12, report.PRNumber)
		comment := ghRepo.Calls[0].Arguments.String(2)
		assert.Contains(t, comment, "Review build was successful!")
		assert.Contains(t, comment, "Complete build log")
		assert.NotContains(t, comment, "Abbreviated log")
		ghRepo.AssertExpectations(t)
	})
	t.Run("Should include an abbreviated log on a failing build", func(t *testing.T) {
		reviewer := new(mockReviewerService)
		ghRepo := new(mockGithubRepository)
		uc := &ReportReviewUseCase{Reviewer: reviewer, GithubRepo: ghRepo}
		reviewer.On("Review", ctx, target, "/work/ollama").
			Return(domain.ReviewFail, "step one\nstep two\nerror: hash mismatch\n", nil)
		ghRepo.On("AddComment", ctx, 12, mock.AnythingOfType("string")).Return(nil)
		ghRepo.On("AddLabels", ctx, 12, []string{LabelBuildFailing}).Return(nil)
		ghRepo.On("RemoveLabel", ctx, 12, LabelBuildPassing).Return(nil)

		report, err := uc.Execute(ctx, target, pr, "/work/ollama")
		require.NoError(t, err)
		assert.False(t, report.Passed())
		comment := ghRepo.Calls[0].Arguments.String(2)
		assert.Contains(t, comment, "Review build failed")
		assert.Contains(t, comment, "Abbreviated log")
		assert.Contains(t, comment, "error: hash mismatch")
	})
	t.Run("Should wrap reviewer failures in a review error", func(t *testing.T) {
		reviewer := new(mockReviewerService)
		ghRepo := new(mockGithubRepository)
		uc := &ReportReviewUseCase{Reviewer: reviewer, GithubRepo: ghRepo}
		reviewer.On("Review", ctx, target, "/work/ollama").
			Return(domain.ReviewFail, "", errors.New("reviewer binary missing"))

		_, err := uc.Execute(ctx, target, pr, "/work/ollama")
		require.Error(t, err)
		var revErr *domain.ReviewError
		require.ErrorAs(t, err, &revErr)
		assert.Equal(t, "ollama", revErr.Package)
		assert.Equal(t, 12, revErr.PRNumber)
		ghRepo.AssertNotCalled(t, "AddComment")
	})
	t.Run("Should wrap comment posting failures in a review error", func(t *testing.T) {
		reviewer := new(mockReviewerService)
		ghRepo := new(mockGithubRepository)
		uc := &ReportReviewUseCase{Reviewer: reviewer, GithubRepo: ghRepo}
		reviewer.On("Review", ctx, target, "/work/ollama").Return(domain.ReviewPass, "ok\n", nil)
		ghRepo.On("AddComment", ctx, 12, mock.AnythingOfType("string")).Return(errors.New("403"))

		_, err := uc.Execute(ctx, target, pr, "/work/ollama")
		var revErr *domain.ReviewError
		require.ErrorAs(t, err, &revErr)
	})
}

func TestLastLogLines(t *testing.T) {
	t.Run("Should keep short logs intact", func(t *testing.T) {
		assert.Equal(t, "a\nb", lastLogLines("a\nb\n", 5))
	})
	t.Run("Should keep only the tail of long logs", func(t *testing.T) {
		assert.Equal(t, "c\nd", lastLogLines("a\nb\nc\nd", 2))
	})
}
