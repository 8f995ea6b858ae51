package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/botnk/upkeep/internal/domain"
)

// updaterService runs the external updater executable as
// `<command> <package>` inside the checkout, non-interactively.
type updaterService struct {
	command string
	timeout time.Duration
}

// NewUpdaterService creates a new UpdaterService.
func NewUpdaterService(command string) UpdaterService {
	return &updaterService{
		command: command,
		timeout: DefaultUpdateTimeout,
	}
}

// Invoke runs the updater for the target. The raw process result is
// returned alongside any error; exit status is decoded here, once, and
// never re-inspected downstream.
func (s *updaterService) Invoke(
	ctx context.Context,
	target domain.PackageTarget,
	repoPath string,
	env UpdaterEnv,
) (domain.ProcessResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, s.command, target.Name)
	cmd.Dir = repoPath
	cmd.Env = append(cmd.Environ(),
		"PACKAGE="+env.Package,
		"PRE_VERSION="+env.PreVersion,
		"GITHUB_WORKFLOW_URL="+env.RunURL,
		"GH_TOKEN="+env.Token,
	)
	cmd.Stdin = nil
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	result := domain.ProcessResult{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: time.Since(start),
	}
	if err == nil {
		return result, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return result, &domain.UpdaterError{
			Package: target.Name,
			Detail:  fmt.Sprintf("timed out after %v", s.timeout),
			Err:     ctx.Err(),
		}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, &domain.UpdaterError{
			Package: target.Name,
			Detail:  lastLines(result.Stderr, 15),
			Err:     err,
		}
	}
	// The process could not be started at all.
	return result, &domain.UpdaterError{Package: target.Name, Err: err}
}

// lastLines returns the trailing n lines of s, for abbreviated error
// details.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
