package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/ansi"
	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
	"github.com/aucplan/coursegraph/internal/depgraph"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank courses by how foundational they are",
	Long: `Scores every course in the prerequisite graph with iterative PageRank and
prints the most foundational ones: courses that many other courses build on,
directly or through chains of prerequisites.`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().IntVar(&rankTop, "top", 20, "number of courses to print")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	courses, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	sources := make([]depgraph.Source, len(courses))
	for i, c := range courses {
		sources[i] = depgraph.Source{Code: c.Code(), AST: c.PrerequisiteAST}
	}
	graph := depgraph.Build(sources)

	ranks := graph.Rank(depgraph.DefaultRankOptions())
	if len(ranks) == 0 {
		return fmt.Errorf("no prerequisite edges in %s; run \"coursegraph parse\" first", cfg.CatalogPath)
	}
	if rankTop > 0 && len(ranks) > rankTop {
		ranks = ranks[:rankTop]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ansi.Paint(ansi.Bold, "most foundational courses"))
	for i, r := range ranks {
		fmt.Fprintf(out, "  %2d. %-10s score %.4f  required by %d course(s)\n",
			i+1, r.Code, r.Score, r.Dependents)
	}
	return nil
}
