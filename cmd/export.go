package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
	"github.com/aucplan/coursegraph/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a processed collection to SQLite or Postgres",
	Long: `Writes the processed course collection and its reverse dependency edges
to the local SQLite archive as a new run. With --postgres (or the
postgres_dsn config key), exports to Postgres instead.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("postgres", "", "Postgres DSN to export to instead of the SQLite archive")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	courses, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	dsn, _ := cmd.Flags().GetString("postgres")
	if dsn == "" {
		dsn = cfg.PostgresDSN
	}

	ctx := cmd.Context()

	if dsn != "" {
		exporter, err := store.NewExporter(ctx, dsn)
		if err != nil {
			return err
		}
		defer exporter.Close()

		if err := exporter.ExportCourses(ctx, courses); err != nil {
			return err
		}
		if err := exporter.ExportEdges(ctx, courses); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d courses to Postgres\n", len(courses))
		return nil
	}

	archive, err := store.OpenArchive(ctx, cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	runID, err := archive.SaveRun(ctx, courses)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archived %d courses as run %d in %s\n",
		len(courses), runID, cfg.ArchivePath)
	return nil
}
