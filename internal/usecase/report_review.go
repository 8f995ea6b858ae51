package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/repository"
	"github.com/botnk/upkeep/internal/service"
)

const (
	// abbreviatedLogLines is how much of a failing log goes inline before
	// the collapsed full log.
	abbreviatedLogLines = 15

	// LabelBuildPassing marks PRs whose review build succeeded.
	LabelBuildPassing = "build-passing"
	// LabelBuildFailing marks PRs whose review build failed.
	LabelBuildFailing = "build-failing"
)

// ReportReviewUseCase runs the external reviewer against a freshly
// published PR and posts its verdict back as a comment. It only ever runs
// after a successful publish; a reviewer failure never unpublishes.

type ReportReviewUseCase struct {
	Reviewer   service.ReviewerService
	GithubRepo repository.GithubRepository
}

// Execute reviews the change behind the PR and reports the result.
func (uc *ReportReviewUseCase) Execute(
	ctx context.Context,
	target domain.PackageTarget,
	pr *domain.PullRequestRecord,
	repoPath string,
) (domain.ReviewReport, error) {
	verdict, log, err := uc.Reviewer.Review(ctx, target, repoPath)
	if err != nil {
		return domain.ReviewReport{}, &domain.ReviewError{Package: target.Name, PRNumber: pr.Number, Err: err}
	}
	report := domain.ReviewReport{
		PRNumber: pr.Number,
		Verdict:  verdict,
		Summary:  reviewSummary(target, verdict),
		Log:      log,
	}
	comment := formatReviewComment(target, report)
	if err := uc.GithubRepo.AddComment(ctx, pr.Number, comment); err != nil {
		return domain.ReviewReport{}, &domain.ReviewError{Package: target.Name, PRNumber: pr.Number, Err: err}
	}
	label := LabelBuildFailing
	remove := LabelBuildPassing
	if report.Passed() {
		label = LabelBuildPassing
		remove = LabelBuildFailing
	}
	if err := uc.GithubRepo.AddLabels(ctx, pr.Number, []string{label}); err != nil {
		return domain.ReviewReport{}, &domain.ReviewError{Package: target.Name, PRNumber: pr.Number, Err: err}
	}
	if err := uc.GithubRepo.RemoveLabel(ctx, pr.Number, remove); err != nil {
		return domain.ReviewReport{}, &domain.ReviewError{Package: target.Name, PRNumber: pr.Number, Err: err}
	}
	return report, nil
}

func reviewSummary(target domain.PackageTarget, verdict domain.ReviewVerdict) string {
	if verdict == domain.ReviewPass {
		return fmt.Sprintf("review build of %s succeeded", target.Name)
	}
	return fmt.Sprintf("review build of %s failed", target.Name)
}

// formatReviewComment renders the comment posted to the PR: a one-line
// verdict, an abbreviated log for failures, and the complete log in a
// collapsed section.
func formatReviewComment(target domain.PackageTarget, report domain.ReviewReport) string {
	var b strings.Builder
	if report.Passed() {
		b.WriteString("Review build was successful! This change looks ready for review.\n\n")
	} else {
		b.WriteString("Review build failed. Leaving this PR as a draft for now. Push commits ")
		b.WriteString("to this branch and mark as ready for review once the build issues are resolved.\n\n")
		b.WriteString("Abbreviated log:\n")
		b.WriteString("```\n")
		b.WriteString(lastLogLines(report.Log, abbreviatedLogLines))
		b.WriteString("\n```\n\n")
	}
	b.WriteString("<details>\n<summary>Complete build log</summary>\n\n")
	b.WriteString("```\n")
	fmt.Fprintf(&b, "> review -A %s\n", target.Name)
	b.WriteString(strings.TrimRight(report.Log, "\n"))
	b.WriteString("\n```\n</details>\n")
	return b.String()
}

func lastLogLines(log string, n int) string {
	lines := strings.Split(strings.TrimRight(log, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
