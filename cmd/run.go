package cmd

import (
	"fmt"
	"slices"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/spf13/cobra"
)

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var (
		runPackages []string
		runDebug    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe, update, and open PRs for the configured packages",
		Long: `Run the update pipeline for every configured package:

- Clone an isolated checkout per package
- Probe the pinned version and run the external updater
- Classify the result (version bump, cosmetic drift, or no change)
- Push a branch and open a draft pull request for real changes
- Build the change and report the verdict back on the PR

Packages run concurrently; one package failing never stops its siblings.
The aggregated results are written to the state directory as a run report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(runDebug)
			if err != nil {
				return err
			}
			defer c.log.Sync() //nolint:errcheck // best-effort flush on exit
			if len(runPackages) > 0 {
				c.cfg.Targets = filterTargets(c.cfg.Targets, runPackages)
				if len(c.cfg.Targets) == 0 {
					return fmt.Errorf("no configured target matches %v", runPackages)
				}
			}
			if err := c.cfg.ValidateForRun(); err != nil {
				return err
			}
			report, err := c.orch.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s finished: %d package(s) processed\n",
				report.SessionID, len(report.Packages))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&runPackages, "package", nil, "Limit the run to the named package(s)")
	cmd.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging")
	return cmd
}

func filterTargets(targets []domain.PackageTarget, names []string) []domain.PackageTarget {
	var kept []domain.PackageTarget
	for _, t := range targets {
		if slices.Contains(names, t.Name) {
			kept = append(kept, t)
		}
	}
	return kept
}
