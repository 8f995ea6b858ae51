package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/spf13/cobra"
)

// newReportCmd creates the report command, which prints a saved run
// report from the state directory.
func newReportCmd() *cobra.Command {
	var reportSessionID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a saved run report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(false)
			if err != nil {
				return err
			}
			var report *domain.RunReport
			if reportSessionID != "" {
				report, err = c.reportRepo.Load(cmd.Context(), reportSessionID)
			} else {
				report, err = c.reportRepo.LoadLatest(cmd.Context())
			}
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&reportSessionID, "session-id", "", "Session ID to print (uses latest if not specified)")
	return cmd
}
