package cmd

import (
	"github.com/botnk/upkeep/internal/config"
	"github.com/botnk/upkeep/internal/logging"
	"github.com/botnk/upkeep/internal/orchestrator"
	"github.com/botnk/upkeep/internal/repository"
	"github.com/botnk/upkeep/internal/service"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.

type container struct {
	cfg  *config.Config
	log  *zap.Logger
	orch *orchestrator.UpdateOrchestrator

	fsRepo     repository.FileSystemRepository
	reportRepo repository.ReportRepository
}

// newContainer loads configuration and wires every collaborator. It is
// built per command invocation so `upkeep version` never pays for it.
func newContainer(debug bool) (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(debug)
	if err != nil {
		return nil, err
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	reportRepo := repository.NewJSONReportRepository(fsRepo, cfg.StateDir)

	// The orchestrator needs GitHub credentials; commands that only read
	// local state (like report) work without them.
	var orch *orchestrator.UpdateOrchestrator
	if cfg.GithubToken != "" {
		ghRepo, err := repository.NewGithubRepository(cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo, cfg.ForkOwner)
		if err != nil {
			return nil, err
		}
		cloner := repository.NewGitCloner(cfg.BotUser, cfg.GithubToken)
		orch = orchestrator.NewUpdateOrchestrator(
			cfg,
			cloner,
			ghRepo,
			fsRepo,
			reportRepo,
			service.NewProberService(cfg.ProberCmd),
			service.NewUpdaterService(cfg.UpdaterCmd),
			service.NewReviewerService(cfg.ReviewerCmd),
			log,
		)
	}

	return &container{
		cfg:        cfg,
		log:        log,
		orch:       orch,
		fsRepo:     fsRepo,
		reportRepo: reportRepo,
	}, nil
}
