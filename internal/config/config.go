// Package config holds runtime configuration for coursegraph commands.
// Values are populated from .coursegraph.yaml, COURSEGRAPH_* env vars, and
// CLI flags, in that order of increasing precedence.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ScrapeConfig configures the catalog scraper.
type ScrapeConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	ListURL   string `mapstructure:"list_url"`
	FirstPage int    `mapstructure:"first_page"`
	LastPage  int    `mapstructure:"last_page"`
	DelayMS   int    `mapstructure:"delay_ms"`
	CacheSize int    `mapstructure:"cache_size"`
}

// Config holds all runtime configuration.
type Config struct {
	CatalogPath  string       `mapstructure:"catalog_path"`
	KeywordsPath string       `mapstructure:"keywords_path"`
	Workers      int          `mapstructure:"workers"`
	ArchivePath  string       `mapstructure:"archive_path"`
	PostgresDSN  string       `mapstructure:"postgres_dsn"`
	Verbose      bool         `mapstructure:"verbose"`
	Scrape       ScrapeConfig `mapstructure:"scrape"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("catalog_path", "all_courses.json")
	viper.SetDefault("keywords_path", "")
	viper.SetDefault("workers", 0)
	viper.SetDefault("archive_path", "coursegraph.db")
	viper.SetDefault("postgres_dsn", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("scrape.base_url", "")
	viper.SetDefault("scrape.list_url", "")
	viper.SetDefault("scrape.first_page", 1)
	viper.SetDefault("scrape.last_page", 24)
	viper.SetDefault("scrape.delay_ms", 150)
	viper.SetDefault("scrape.cache_size", 512)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
