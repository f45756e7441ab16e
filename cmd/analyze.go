package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brandscope/logoharvest/internal/analyze"
	"github.com/brandscope/logoharvest/internal/store"
)

func newAnalyzeCmd() *cobra.Command {
	var analysisType string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze harvested logos by color, minimalism, or emotion",
		Long: `Runs one analysis over the finished logo store and writes its report
under the reports directory. Analyses are read-only; the store is never
modified.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(cfg.Store.Dir)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			a := analyze.New(st, cfg.Reports.Dir, logger)

			switch analysisType {
			case "color":
				return a.Color()
			case "minimalism":
				return a.Minimalism()
			case "emotion":
				return a.Emotion()
			default:
				return fmt.Errorf("unknown analysis type %q (want color, minimalism, or emotion)", analysisType)
			}
		},
	}

	cmd.Flags().StringVar(&analysisType, "type", "", "analysis type: color, minimalism, or emotion")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
