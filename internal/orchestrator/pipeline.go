package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/repository"
	"github.com/botnk/upkeep/internal/service"
	"github.com/botnk/upkeep/internal/usecase"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// runPackage executes the full pipeline for a single package against its
// own isolated checkout: probe, update, inspect, decide, publish, review.
// It never returns an error; every failure mode is folded into the
// package result so sibling pipelines are unaffected.
func (o *UpdateOrchestrator) runPackage(
	ctx context.Context,
	sessionID string,
	target domain.PackageTarget,
) domain.PackageResult {
	ctx, cancel := context.WithTimeout(ctx, DefaultPackageTimeout)
	defer cancel()
	log := o.log.With(zap.String("package", target.Name))

	dir := filepath.Join(o.cfg.WorkDir, sessionID, target.Name)
	if err := o.fsRepo.MkdirAll(filepath.Dir(dir), DirPermissionsDefault); err != nil {
		return failedResult(target, fmt.Errorf("failed to prepare work directory: %w", err))
	}
	defer func() {
		if err := o.fsRepo.RemoveAll(dir); err != nil {
			log.Warn("failed to clean up checkout", zap.Error(err))
		}
	}()

	log.Info("cloning repository", zap.String("branch", o.cfg.BaseBranch))
	git, err := o.cloner.Clone(ctx, o.cfg.CloneURL(), o.cfg.BaseBranch, dir)
	if err != nil {
		return failedResult(target, fmt.Errorf("failed to clone repository: %w", err))
	}
	if err := git.ConfigureUser(ctx, o.cfg.BotUser, o.cfg.BotEmail); err != nil {
		return failedResult(target, fmt.Errorf("failed to configure git user: %w", err))
	}

	before, err := o.prober.Probe(ctx, target, git.Root())
	if err != nil {
		return failedResult(target, err)
	}
	log.Info("probed current version", zap.String("version", before))

	outcome, err := o.runUpdater(ctx, target, git, before, log)
	if err != nil {
		return failedResult(target, err)
	}

	decider := &usecase.DecidePublicationUseCase{
		GithubRepo:     o.githubRepo,
		RequireUpgrade: o.cfg.RequireUpgrade,
		RunURL:         o.cfg.RunURL,
	}
	decision, err := decider.Execute(ctx, target, outcome)
	if err != nil {
		return failedResult(target, err)
	}
	if decision.Kind == domain.DecisionSkip {
		if outcome.Kind == domain.OutcomeFailed {
			res := failedResult(target, &domain.UpdaterError{Package: target.Name, Detail: outcome.FailDetail})
			res.Before = outcome.Versions.Before
			return res
		}
		log.Info("skipping publish", zap.String("reason", decision.SkipReason))
		return domain.PackageResult{
			Package:    target.Name,
			Status:     domain.StatusSkipped,
			Before:     outcome.Versions.Before,
			After:      outcome.Versions.After,
			SkipReason: decision.SkipReason,
		}
	}
	return o.publish(ctx, target, git, outcome, decision, log)
}

// runUpdater invokes the external updater and classifies what it did. An
// updater failure becomes a failed outcome rather than aborting, so the
// decision step records it uniformly.
func (o *UpdateOrchestrator) runUpdater(
	ctx context.Context,
	target domain.PackageTarget,
	git repository.GitRepository,
	before string,
	log *zap.Logger,
) (domain.UpdateOutcome, error) {
	env := service.UpdaterEnv{
		Package:    target.Name,
		PreVersion: before,
		RunURL:     o.cfg.RunURL,
		Token:      o.cfg.GithubToken,
	}
	result, err := o.updater.Invoke(ctx, target, git.Root(), env)
	if err != nil {
		var updErr *domain.UpdaterError
		if errors.As(err, &updErr) {
			log.Warn("updater failed", zap.Int("exit_code", result.ExitCode), zap.String("detail", updErr.Detail))
			return domain.FailedOutcome(domain.VersionSnapshot{Before: before}, updErr.Detail), nil
		}
		return domain.UpdateOutcome{}, err
	}
	log.Info("updater completed", zap.Duration("elapsed", result.Elapsed))
	inspector := &usecase.InspectChangesUseCase{Prober: o.prober}
	return inspector.Execute(ctx, target, before, git)
}

// publish pushes the committed update and opens (or refreshes) the PR,
// then hands off to the reviewer. Once the PR exists, a reviewer problem
// is reported but never fails the publish.
func (o *UpdateOrchestrator) publish(
	ctx context.Context,
	target domain.PackageTarget,
	git repository.GitRepository,
	outcome domain.UpdateOutcome,
	decision domain.PublishDecision,
	log *zap.Logger,
) domain.PackageResult {
	// Remote writes stop at cancellation; a canceled run must not leave
	// half-published branches behind.
	if err := ctx.Err(); err != nil {
		return failedResult(target, &domain.PublishError{Package: target.Name, Err: err})
	}
	if err := ValidateBranchName(decision.BranchName); err != nil {
		return failedResult(target, &domain.PublishError{Package: target.Name, Err: err})
	}
	if err := git.CreateBranch(ctx, decision.BranchName); err != nil {
		return failedResult(target, &domain.PublishError{Package: target.Name, Err: err})
	}
	backoff := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(git.PushBranch(ctx, o.cfg.ForkURL(), decision.BranchName, true))
	})
	if err != nil {
		return failedResult(target, &domain.PublishError{Package: target.Name, Err: fmt.Errorf("failed to push branch: %w", err)})
	}
	log.Info("pushed branch", zap.String("branch", decision.BranchName))

	body := domain.ComposeBody(decision.Body, o.readPRTemplate(git.Root()))
	var pr *domain.PullRequestRecord
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var prErr error
		pr, prErr = o.githubRepo.CreateOrUpdatePR(
			ctx, decision.BranchName, o.cfg.BaseBranch, decision.Title, body, true, []string{"automated"})
		return retry.RetryableError(prErr)
	})
	if err != nil {
		return failedResult(target, &domain.PublishError{Package: target.Name, Err: fmt.Errorf("failed to create pull request: %w", err)})
	}
	log.Info("pull request ready", zap.Int("number", pr.Number), zap.String("url", pr.URL))

	result := domain.PackageResult{
		Package:  target.Name,
		Status:   domain.StatusPublished,
		Before:   outcome.Versions.Before,
		After:    outcome.Versions.After,
		PRNumber: pr.Number,
		PRURL:    pr.URL,
	}
	review := &usecase.ReportReviewUseCase{Reviewer: o.reviewer, GithubRepo: o.githubRepo}
	report, err := review.Execute(ctx, target, pr, git.Root())
	if err != nil {
		log.Warn("review reporting failed", zap.Error(err))
		result.ReviewFailed = true
		result.Error = err.Error()
		return result
	}
	result.ReviewVerdict = report.Verdict
	log.Info("review completed", zap.String("verdict", string(report.Verdict)))
	return result
}

// readPRTemplate returns the repository's PR template, or empty when the
// checkout carries none.
func (o *UpdateOrchestrator) readPRTemplate(root string) string {
	path := filepath.Join(root, ".github", "PULL_REQUEST_TEMPLATE.md")
	data, err := afero.ReadFile(o.fsRepo, path)
	if err != nil {
		if !os.IsNotExist(err) {
			o.log.Warn("failed to read PR template", zap.Error(err))
		}
		return ""
	}
	return string(data)
}

func failedResult(target domain.PackageTarget, err error) domain.PackageResult {
	return domain.PackageResult{
		Package: target.Name,
		Status:  domain.StatusFailed,
		Error:   err.Error(),
	}
}
