package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "shopweek",
	Short:        "Weekly fab and cut capacity planner for the shop floor",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.shopweek/config.yaml)")
	rootCmd.SetHelpFunc(colorizedHelpFunc())
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(backlogCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)

	registerCompletions()
}

func Execute() error {
	return rootCmd.Execute()
}
