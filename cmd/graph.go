package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/ansi"
	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
)

var graphCmd = &cobra.Command{
	Use:   "graph CODE",
	Short: "Show which courses require the given course",
	Long: `Looks up a course by its normalized code (e.g. CSCE1001) in the processed
collection and prints the courses that list it as a prerequisite and as a
corequisite. Run "coursegraph parse" first to populate the edges.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	code := strings.ToUpper(strings.ReplaceAll(args[0], " ", ""))

	courses, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	for _, c := range courses {
		if c.Code() != code {
			continue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ansi.Paint(ansi.Bold, c.Title))

		if len(c.IsPrerequisiteFor) == 0 && len(c.IsCorequisiteFor) == 0 {
			fmt.Fprintln(out, "  leaf course: not required by any other course")
			return nil
		}
		if len(c.IsPrerequisiteFor) > 0 {
			fmt.Fprintf(out, "  prerequisite for %d course(s):\n", len(c.IsPrerequisiteFor))
			for _, dep := range c.IsPrerequisiteFor {
				fmt.Fprintf(out, "    %s\n", dep)
			}
		}
		if len(c.IsCorequisiteFor) > 0 {
			fmt.Fprintf(out, "  corequisite for %d course(s):\n", len(c.IsCorequisiteFor))
			for _, dep := range c.IsCorequisiteFor {
				fmt.Fprintf(out, "    %s\n", dep)
			}
		}
		return nil
	}

	return fmt.Errorf("course %s not found in %s", code, cfg.CatalogPath)
}
