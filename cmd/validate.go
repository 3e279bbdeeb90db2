package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the course collection file against the schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", cfg.CatalogPath, err)
		}

		if err := catalog.ValidateCollection(data); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", cfg.CatalogPath, err)
			os.Exit(1)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid course collection\n", cfg.CatalogPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
