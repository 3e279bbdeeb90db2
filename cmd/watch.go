package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprocess the collection whenever the catalog file changes",
	Long: `Watches the catalog file and reruns the parse pipeline on every write,
printing updated statistics. Useful while hand-correcting scraped
requisite text.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.CatalogPath); err != nil {
		return fmt.Errorf("watch: watch %s: %w", cfg.CatalogPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", cfg.CatalogPath)

	// Saving re-creates the file via rename, so re-add after each cycle
	// and debounce the burst of events an editor write produces.
	var last time.Time
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case err := <-watcher.Errors:
			return fmt.Errorf("watch: %w", err)
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if time.Since(last) < time.Second {
				continue
			}
			last = time.Now()

			if err := reprocess(cmd, cfg); err != nil {
				// A half-written file mid-save is expected; report and
				// keep watching.
				fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
			}
			_ = watcher.Add(cfg.CatalogPath)
		}
	}
}

func reprocess(cmd *cobra.Command, cfg config.Config) error {
	courses, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	// Reprocessing our own save output is harmless: parsing is
	// idempotent, so the second pass produces identical trees.
	pipe, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	processed, stats := pipe.Process(courses)
	if err := catalog.Save(cfg.CatalogPath, processed); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s reprocessed %s\n",
		time.Now().Format(time.TimeOnly), summaryLine(stats.Total, stats.Errors))
	return nil
}

func summaryLine(total, errors int) string {
	parts := []string{fmt.Sprintf("%d courses", total)}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", errors))
	}
	return strings.Join(parts, ", ")
}
