package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"html-presenter/internal/config"
	"html-presenter/internal/services"
)

var writeManifest bool

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "List the default slides",
	Long: `Lists the default slides from the manifest in the slides directory, or
the slides discovered there when no manifest exists. With --write the
discovered slides are saved as the new manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store, err := services.NewManifestStore(cfg.Slides.Dir, cfg.Slides.Include, cfg.Slides.Exclude)
		if err != nil {
			return err
		}

		if writeManifest {
			entries, err := store.Discover()
			if err != nil {
				return fmt.Errorf("discovering slides: %w", err)
			}
			if err := store.SetEntries(entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d slide(s) to %s\n", len(entries), store.Path())
		} else if err := store.Load(); err != nil {
			return err
		}

		dim := color.New(color.Faint)
		for i, e := range store.Entries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s  %s\n", i+1, color.New(color.Bold).Sprint(e.Title), dim.Sprint(e.Path))
		}
		return nil
	},
}

func init() {
	deckCmd.Flags().BoolVar(&writeManifest, "write", false, "save discovered slides as the manifest")
	rootCmd.AddCommand(deckCmd)
}
