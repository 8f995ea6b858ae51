package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/botnk/upkeep/internal/domain"
)

// reviewerService runs the external reviewer as `<command> -A <package>`
// inside the checkout, capturing the combined build log.
type reviewerService struct {
	command string
	timeout time.Duration
}

// NewReviewerService creates a new ReviewerService.
func NewReviewerService(command string) ReviewerService {
	return &reviewerService{
		command: command,
		timeout: DefaultReviewTimeout,
	}
}

// Review validates the target's updated definition. Exit 0 is a pass,
// any other exit from a started process is a fail verdict with the log;
// only a process that could not run at all yields an error.
func (s *reviewerService) Review(
	ctx context.Context,
	target domain.PackageTarget,
	repoPath string,
) (domain.ReviewVerdict, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, s.command, "-A", target.VersionAttr())
	cmd.Dir = repoPath
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	err := cmd.Run()
	log := combined.String()
	if err == nil {
		return domain.ReviewPass, log, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "", log, fmt.Errorf("reviewer timed out after %v", s.timeout)
	}
	if _, ok := err.(*exec.ExitError); ok {
		return domain.ReviewFail, log, nil
	}
	return "", log, fmt.Errorf("reviewer could not run: %w", err)
}
