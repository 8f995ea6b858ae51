package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/botnk/upkeep/internal/config"
	"github.com/botnk/upkeep/internal/domain"
	"github.com/botnk/upkeep/internal/repository"
	"github.com/botnk/upkeep/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UpdateOrchestrator drives one run: every configured package gets its
// own pipeline in its own checkout, pipelines run concurrently, and the
// aggregated results are persisted as a run report.
type UpdateOrchestrator struct {
	cfg        *config.Config
	cloner     repository.GitCloner
	githubRepo repository.GithubRepository
	fsRepo     repository.FileSystemRepository
	reportRepo repository.ReportRepository
	prober     service.ProberService
	updater    service.UpdaterService
	reviewer   service.ReviewerService
	log        *zap.Logger
}

// NewUpdateOrchestrator creates an orchestrator from its collaborators.
func NewUpdateOrchestrator(
	cfg *config.Config,
	cloner repository.GitCloner,
	githubRepo repository.GithubRepository,
	fsRepo repository.FileSystemRepository,
	reportRepo repository.ReportRepository,
	prober service.ProberService,
	updater service.UpdaterService,
	reviewer service.ReviewerService,
	log *zap.Logger,
) *UpdateOrchestrator {
	return &UpdateOrchestrator{
		cfg:        cfg,
		cloner:     cloner,
		githubRepo: githubRepo,
		fsRepo:     fsRepo,
		reportRepo: reportRepo,
		prober:     prober,
		updater:    updater,
		reviewer:   reviewer,
		log:        log,
	}
}

// Run executes pipelines for all configured targets and saves the run
// report. A package failure is isolated to its own result slot; the run
// as a whole fails only in the returned error, after every sibling has
// finished and the report is saved.
func (o *UpdateOrchestrator) Run(ctx context.Context) (domain.RunReport, error) {
	sessionID := uuid.NewString()
	log := o.log.With(zap.String("session_id", sessionID))
	log.Info("starting run", zap.Int("targets", len(o.cfg.Targets)))

	report := domain.RunReport{
		SessionID: sessionID,
		RunURL:    o.cfg.RunURL,
		StartedAt: time.Now().UTC(),
		Packages:  make([]domain.PackageResult, len(o.cfg.Targets)),
	}

	// No shared cancellation between pipelines. One package failing must
	// not abort its siblings, so each goroutine reports through its result
	// slot and always returns nil.
	var g errgroup.Group
	g.SetLimit(DefaultParallelism)
	for i, target := range o.cfg.Targets {
		g.Go(func() error {
			report.Packages[i] = o.runPackage(ctx, sessionID, target)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // pipelines never return errors

	report.FinishedAt = time.Now().UTC()
	if err := o.reportRepo.Save(ctx, &report); err != nil {
		log.Warn("failed to save run report", zap.Error(err))
	}
	for _, p := range report.Packages {
		log.Info("package result",
			zap.String("package", p.Package),
			zap.String("status", string(p.Status)),
			zap.String("error", p.Error))
	}
	if report.Failed() {
		return report, fmt.Errorf("run %s finished with failed packages", sessionID)
	}
	return report, nil
}
