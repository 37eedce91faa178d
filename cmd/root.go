package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "cutplan",
	Short: "Weather-aware field service scheduling",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(suggestCmd, optimizeCmd, ensureCmd, moveCmd, undoCmd, serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
