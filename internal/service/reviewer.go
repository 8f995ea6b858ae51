package service

import (
	"context"

	"github.com/botnk/upkeep/internal/domain"
)

// ReviewerService defines the interface for the external reviewer that
// validates a proposed change (e.g. builds it). A completed review with
// problems is a fail verdict, not an error; an error means the tool
// itself could not run.

type ReviewerService interface {
	Review(ctx context.Context, target domain.PackageTarget, repoPath string) (domain.ReviewVerdict, string, error)
}
