package config

import (
	"testing"

	"github.com/spf13/viper"
)

// viper state is global, so these tests reset it and do not run in parallel.

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CatalogPath != "all_courses.json" {
		t.Errorf("CatalogPath = %q, want all_courses.json", cfg.CatalogPath)
	}
	if cfg.ArchivePath != "coursegraph.db" {
		t.Errorf("ArchivePath = %q, want coursegraph.db", cfg.ArchivePath)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if cfg.Scrape.FirstPage != 1 || cfg.Scrape.LastPage != 24 {
		t.Errorf("Scrape pages = %d..%d, want 1..24", cfg.Scrape.FirstPage, cfg.Scrape.LastPage)
	}
	if cfg.Scrape.DelayMS != 150 {
		t.Errorf("Scrape.DelayMS = %d, want 150", cfg.Scrape.DelayMS)
	}
	if cfg.Scrape.CacheSize != 512 {
		t.Errorf("Scrape.CacheSize = %d, want 512", cfg.Scrape.CacheSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("catalog_path", "spring_2026.json")
	viper.Set("workers", 4)
	viper.Set("scrape.delay_ms", 0)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CatalogPath != "spring_2026.json" {
		t.Errorf("CatalogPath = %q, want spring_2026.json", cfg.CatalogPath)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Scrape.DelayMS != 0 {
		t.Errorf("Scrape.DelayMS = %d, want 0", cfg.Scrape.DelayMS)
	}
	// Untouched keys keep their defaults.
	if cfg.ArchivePath != "coursegraph.db" {
		t.Errorf("ArchivePath = %q, want coursegraph.db", cfg.ArchivePath)
	}
}
