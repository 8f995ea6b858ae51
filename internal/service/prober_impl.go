package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/botnk/upkeep/internal/domain"
)

// proberService evaluates package versions with the external evaluator
// (nix-instantiate compatible: prints the version as a JSON string).
type proberService struct {
	command string
	timeout time.Duration
}

// NewProberService creates a new ProberService around the given evaluator
// executable.
func NewProberService(command string) ProberService {
	return &proberService{
		command: command,
		timeout: DefaultProbeTimeout,
	}
}

// attrPattern allows only plausible attribute paths, preventing expression
// injection through target configuration.
var attrPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Probe evaluates the target's pinned version in the given checkout.
func (s *proberService) Probe(ctx context.Context, target domain.PackageTarget, repoPath string) (string, error) {
	attr := target.VersionAttr()
	if !attrPattern.MatchString(attr) {
		return "", &domain.ProbeError{Package: target.Name, Err: fmt.Errorf("invalid version attribute: %q", attr)}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	expr := fmt.Sprintf("with import ./. {}; lib.getVersion %s", attr)
	cmd := exec.CommandContext(ctx, s.command, "--eval", "-E", expr, "--json")
	cmd.Dir = repoPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &domain.ProbeError{Package: target.Name, Err: fmt.Errorf("evaluation timed out after %v", s.timeout)}
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w (stderr: %s)", err, detail)
		}
		return "", &domain.ProbeError{Package: target.Name, Err: err}
	}
	var version string
	if err := json.Unmarshal(stdout.Bytes(), &version); err != nil {
		return "", &domain.ProbeError{Package: target.Name, Err: fmt.Errorf("malformed evaluator output %q: %w", stdout.String(), err)}
	}
	if version == "" {
		return "", &domain.ProbeError{Package: target.Name, Err: fmt.Errorf("evaluator returned empty version")}
	}
	return version, nil
}
