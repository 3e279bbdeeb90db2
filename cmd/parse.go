package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/ansi"
	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
	"github.com/aucplan/coursegraph/internal/pipeline"
	"github.com/aucplan/coursegraph/internal/requisite"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse requisite text and rebuild the reverse dependency graph",
	Long: `Loads the course collection, parses every course's prerequisite and
concurrent text into a requisite tree, rebuilds the reverse dependency
graph over the whole catalog, and writes the augmented collection back.
The previous file is preserved with a .backup suffix.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	courses, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	pipe, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	processed, stats := pipe.Process(courses)

	if err := catalog.Save(cfg.CatalogPath, processed); err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), stats)
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated (backup at %s%s)\n",
		cfg.CatalogPath, cfg.CatalogPath, catalog.BackupSuffix)
	return nil
}

// newPipeline builds the processing pipeline, loading a keyword override
// file when one is configured.
func newPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	parser := requisite.New()
	if cfg.KeywordsPath != "" {
		rules, err := requisite.LoadKeywordRules(cfg.KeywordsPath)
		if err != nil {
			return nil, err
		}
		parser = requisite.NewWithRules(rules)
	}
	return &pipeline.Pipeline{Parser: parser, Workers: cfg.Workers}, nil
}

func printStats(w io.Writer, stats pipeline.Stats) {
	fmt.Fprintln(w, ansi.Paint(ansi.Bold, "Processing statistics"))
	fmt.Fprintf(w, "  Total courses:            %d\n", stats.Total)
	fmt.Fprintf(w, "  With prerequisites:       %d\n", stats.WithPrereqs)
	fmt.Fprintf(w, "  With corequisites:        %d\n", stats.WithCoreqs)
	fmt.Fprintf(w, "  Empty (no requirements):  %d\n", stats.Empty)
	fmt.Fprintf(w, "  Leaf courses:             %d\n", stats.Leaves)
	fmt.Fprintf(w, "  Missing join key:         %d\n", stats.MissingJoinKey)
	if stats.Errors > 0 {
		fmt.Fprintf(w, "  %s       %d\n", ansi.Paint(ansi.Red, "Parsing errors:"), stats.Errors)
	} else {
		fmt.Fprintf(w, "  Parsing errors:           0\n")
	}
}
