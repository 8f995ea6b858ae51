package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/repository"
	"github.com/botnk/upkeep/internal/service"
)

// InspectChangesUseCase classifies what the updater did to the checkout:
// nothing, a version bump, or cosmetic drift.

type InspectChangesUseCase struct {
	Prober service.ProberService
}

// Execute re-probes the version after the updater ran and inspects the
// working tree. When there is a material change it commits it (locally)
// so the diff can be captured, and returns the typed outcome.
func (uc *InspectChangesUseCase) Execute(
	ctx context.Context,
	target domain.PackageTarget,
	before string,
	git repository.GitRepository,
) (domain.UpdateOutcome, error) {
	after, err := uc.Prober.Probe(ctx, target, git.Root())
	if err != nil {
		return domain.UpdateOutcome{}, fmt.Errorf("failed to re-probe version: %w", err)
	}
	versions := domain.VersionSnapshot{Before: before, After: after}
	clean, err := git.IsClean(ctx)
	if err != nil {
		return domain.UpdateOutcome{}, fmt.Errorf("failed to inspect working tree: %w", err)
	}
	if clean {
		// A version change without file changes cannot normally happen;
		// surface it as an update with an empty diff rather than dropping
		// it. The decision step refuses to publish an empty branch.
		if versions.Changed() {
			return domain.UpdatedOutcome(versions, "", false), nil
		}
		return domain.NoChangeOutcome(versions), nil
	}
	// Commit the updater's edits so the diff is a real patch against the
	// base branch. The commit stays local until the decider says publish.
	if err := git.AddAll(ctx); err != nil {
		return domain.UpdateOutcome{}, fmt.Errorf("failed to stage update: %w", err)
	}
	message := fmt.Sprintf("%s: %s -> %s", target.Name, versions.Before, versions.After)
	if _, err := git.Commit(ctx, message); err != nil {
		return domain.UpdateOutcome{}, fmt.Errorf("failed to commit update: %w", err)
	}
	diff, err := git.DiffHead(ctx)
	if err != nil {
		return domain.UpdateOutcome{}, fmt.Errorf("failed to capture diff: %w", err)
	}
	diff = RestrictDiff(diff, target.Subpath)
	// Drift: the tree changed but the version did not (e.g. a hash
	// rewritten to SRI format). Still surfaced, never silently dropped.
	return domain.UpdatedOutcome(versions, diff, !versions.Changed()), nil
}

// RestrictDiff keeps only the per-file sections of a unified diff whose
// path starts with subpath. An empty subpath returns the diff unchanged.
func RestrictDiff(diff, subpath string) string {
	if subpath == "" || diff == "" {
		return diff
	}
	prefix := strings.TrimSuffix(subpath, "/") + "/"
	var kept []string
	for _, section := range strings.Split(diff, "diff --git ") {
		if section == "" {
			continue
		}
		// Section header looks like: a/path/to/file b/path/to/file
		header, _, _ := strings.Cut(section, "\n")
		fields := strings.Fields(header)
		if len(fields) == 0 {
			continue
		}
		path := strings.TrimPrefix(fields[0], "a/")
		if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(subpath, "/") {
			kept = append(kept, "diff --git "+section)
		}
	}
	return strings.Join(kept, "")
}
