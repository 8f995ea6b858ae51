package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "upkeep",
	Short: "A CLI tool for keeping package versions fresh",
	Long: `upkeep probes pinned package versions, runs the repository's update
tooling, and opens pull requests for the changes it finds.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReportCmd())
}
