package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"html-presenter/internal/config"
	"html-presenter/internal/engine"
	"html-presenter/internal/models"
)

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List the transition effects and their poses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		enabled, err := cfg.Viewer.EffectSet()
		if err != nil {
			return err
		}
		printEffects(cmd.OutOrStdout(), enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(effectsCmd)
}

func printEffects(w io.Writer, enabled []models.Effect) {
	on := make(map[models.Effect]bool, len(enabled))
	for _, e := range enabled {
		on[e] = true
	}
	name := color.New(color.Bold)
	for _, e := range engine.Effects() {
		status := color.New(color.FgGreen).Sprint("on ")
		if !on[e] {
			status = color.New(color.FgYellow).Sprint("off")
		}
		fmt.Fprintf(w, "%s %s\n", status, name.Sprint(e))
		for _, dir := range []models.Direction{models.DirectionNext, models.DirectionPrev} {
			p, _ := engine.Lookup(e, dir)
			fmt.Fprintf(w, "      %-4s entry %s\n", dir, p.EntryStart.CSS())
			fmt.Fprintf(w, "           exit  %s\n", p.Exit.CSS())
		}
	}
}
