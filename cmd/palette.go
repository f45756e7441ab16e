package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brandscope/logoharvest/internal/palette"
	"github.com/brandscope/logoharvest/internal/store"
)

func newPaletteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Render a color palette strip for every harvested logo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(cfg.Store.Dir)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			r := palette.New(st, cfg.Palette.Dir, logger)
			rendered, err := r.RenderAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "palettes rendered: %d\n", rendered)
			return nil
		},
	}
}
