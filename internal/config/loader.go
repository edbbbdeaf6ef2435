package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("STOCKNEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("stocknews")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".stocknews"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scrape.max_pages", cfg.Scrape.MaxPages)
	v.SetDefault("scrape.delay", cfg.Scrape.Delay)
	v.SetDefault("scrape.max_retries", cfg.Scrape.MaxRetries)
	v.SetDefault("scrape.retry_delay", cfg.Scrape.RetryDelay)
	v.SetDefault("scrape.sources", cfg.Scrape.Sources)

	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.accept_language", cfg.Fetcher.AcceptLanguage)
	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.nav_timeout", cfg.Browser.NavTimeout)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_dir", cfg.Storage.OutputDir)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("finmind.base_url", cfg.FinMind.BaseURL)
	v.SetDefault("finmind.timeout", cfg.FinMind.Timeout)

	v.SetDefault("market.base_url", cfg.Market.BaseURL)
	v.SetDefault("market.timeout", cfg.Market.Timeout)

	v.SetDefault("sentiment.provider", cfg.Sentiment.Provider)
	v.SetDefault("sentiment.endpoint", cfg.Sentiment.Endpoint)
	v.SetDefault("sentiment.model", cfg.Sentiment.Model)
	v.SetDefault("sentiment.temperature", cfg.Sentiment.Temperature)
	v.SetDefault("sentiment.max_tokens", cfg.Sentiment.MaxTokens)
	v.SetDefault("sentiment.timeout", cfg.Sentiment.Timeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
}
