package main

import (
	"github.com/spf13/cobra"

	"html-presenter/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "presenter",
	Short: "Present HTML slides with animated transitions",
	Long: `presenter serves a deck of HTML slides to browser viewers. Each slide is
scaled to fit the viewer window and slides change with animated transitions
between two alternating surfaces.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
}
