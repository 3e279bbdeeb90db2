package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
	"github.com/aucplan/coursegraph/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch all courses from the published catalog",
	Long: `Collects course links from the paginated catalog listing, fetches every
course detail page, and writes the raw course collection to the catalog
file. Requisite text is captured verbatim; run "coursegraph parse" next.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := scrape.NewClient(scrape.Options{
		BaseURL:   cfg.Scrape.BaseURL,
		ListURL:   cfg.Scrape.ListURL,
		FirstPage: cfg.Scrape.FirstPage,
		LastPage:  cfg.Scrape.LastPage,
		Delay:     time.Duration(cfg.Scrape.DelayMS) * time.Millisecond,
		CacheSize: cfg.Scrape.CacheSize,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Collecting course links from catalog pages...")
	courses, err := client.ScrapeAll(cmd.Context())
	if err != nil {
		return err
	}

	if err := catalog.Save(cfg.CatalogPath, courses); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d courses to %s\n", len(courses), cfg.CatalogPath)
	return nil
}
