package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
	"github.com/aucplan/coursegraph/internal/pipeline"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a processed course collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		courses, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return err
		}

		printStats(cmd.OutOrStdout(), pipeline.Tally(courses))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
