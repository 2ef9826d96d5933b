package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:          "planner",
	Short:        "Weekly time-allocation engine for goals and recurring events",
	Long:         "Planner expands recurring event definitions into occurrences, accounts weekly time against per-goal budgets, and freezes historical weeks as snapshots.",
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to an optional YAML config file")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(freezeCmd)
}
