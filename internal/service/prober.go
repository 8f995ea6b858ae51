package service

import (
	"context"

	"github.com/botnk/upkeep/internal/domain"
)

// ProberService defines the interface for reading a package's pinned
// version from a checkout. Probing never mutates repository state.

type ProberService interface {
	Probe(ctx context.Context, target domain.PackageTarget, repoPath string) (string, error)
}
