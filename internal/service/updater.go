package service

import (
	"context"

	"github.com/botnk/upkeep/internal/domain"
)

// UpdaterEnv carries the inputs the external updater recognizes. The
// values are passed explicitly; the invoker never reads them from its own
// environment.
type UpdaterEnv struct {
	Package    string
	PreVersion string
	RunURL     string
	Token      string
}

// UpdaterService defines the interface for the external update procedure.
// The updater mutates repository files in place and must be safe to run
// when there is nothing to update. A nonzero exit not attributable to
// "already up to date" is returned as an UpdaterError.
type UpdaterService interface {
	Invoke(ctx context.Context, target domain.PackageTarget, repoPath string, env UpdaterEnv) (domain.ProcessResult, error)
}
