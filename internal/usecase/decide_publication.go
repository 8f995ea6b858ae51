package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/repository"
)

// DecidePublicationUseCase turns an update outcome into a publish-or-skip
// decision. It owns the idempotency check: an existing open PR for the
// same (package, newVersion) pair always wins over creating a new one.

type DecidePublicationUseCase struct {
	GithubRepo repository.GithubRepository
	// RequireUpgrade skips publication unless the new version is a strict
	// semver upgrade; only enforced when both versions parse as semver.
	RequireUpgrade bool
	RunURL         string
}

// Execute decides whether the outcome warrants a pull request.
func (uc *DecidePublicationUseCase) Execute(
	ctx context.Context,
	target domain.PackageTarget,
	outcome domain.UpdateOutcome,
) (domain.PublishDecision, error) {
	switch outcome.Kind {
	case domain.OutcomeNoChange:
		return domain.Skip("no change after running updater"), nil
	case domain.OutcomeFailed:
		// The failure itself is surfaced by the pipeline as a run error;
		// the decision is simply not to publish.
		return domain.Skip("updater failed"), nil
	case domain.OutcomeUpdated:
		// Fall through.
	default:
		return domain.PublishDecision{}, fmt.Errorf("unknown outcome kind: %s", outcome.Kind)
	}
	// An updated outcome without a committed diff has nothing a branch
	// could carry; publishing it would fail remotely with an opaque
	// "no commits between" error.
	if outcome.Diff == "" {
		return domain.Skip(fmt.Sprintf(
			"version changed to %s but no file changes were captured; nothing to publish",
			outcome.Versions.After)), nil
	}
	if uc.RequireUpgrade && !outcome.Drift {
		if upgrade, comparable := domain.IsUpgrade(outcome.Versions.Before, outcome.Versions.After); comparable && !upgrade {
			return domain.Skip(fmt.Sprintf(
				"%s does not appear to be an upgrade from %s",
				outcome.Versions.After, outcome.Versions.Before)), nil
		}
	}
	branch := BranchName(target, outcome)
	existing, err := uc.GithubRepo.FindOpenUpdatePR(ctx, target.Name, outcome.Versions.After, branch)
	if err != nil {
		return domain.PublishDecision{}, fmt.Errorf("failed to check for existing PR: %w", err)
	}
	if existing != nil {
		return domain.Skip(fmt.Sprintf("open PR already exists: %s", existing.URL)), nil
	}
	title := fmt.Sprintf("%s: %s -> %s", target.Name, outcome.Versions.Before, outcome.Versions.After)
	bodyUC := &PreparePRBodyUseCase{}
	body, err := bodyUC.Execute(ctx, target, outcome, uc.RunURL)
	if err != nil {
		return domain.PublishDecision{}, fmt.Errorf("failed to prepare PR body: %w", err)
	}
	return domain.PublishDecision{
		Kind:       domain.DecisionPublish,
		BranchName: branch,
		Title:      title,
		Body:       body,
		CommitMsg:  title,
	}, nil
}

// BranchName computes the deterministic branch for an outcome. Two
// independent runs given the same (package, newVersion) compute identical
// names without coordination. Drift outcomes (version unchanged) append a
// short content hash of the diff so they never collide with a real bump.
func BranchName(target domain.PackageTarget, outcome domain.UpdateOutcome) string {
	base := fmt.Sprintf("auto-update/%s-%s", target.Name, outcome.Versions.After)
	if !outcome.Drift {
		return base
	}
	sum := sha256.Sum256([]byte(outcome.Diff))
	return base + "-drift-" + hex.EncodeToString(sum[:4])
}
