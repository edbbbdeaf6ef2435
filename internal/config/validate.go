package config

import (
	"fmt"
	"time"
)

var validSources = map[string]bool{
	"yahoo": true,
	"udn":   true,
	"cw":    true,
	"ltn":   true,
	"cna":   true,
}

var validStorageTypes = map[string]bool{
	"csv":     true,
	"jsonl":   true,
	"mongodb": true,
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scrape.Keyword == "" {
		return fmt.Errorf("scrape.keyword must not be empty")
	}
	start, err := time.Parse("2006-01-02", cfg.Scrape.StartDate)
	if err != nil {
		return fmt.Errorf("scrape.start_date must be YYYY-MM-DD, got %q", cfg.Scrape.StartDate)
	}
	end, err := time.Parse("2006-01-02", cfg.Scrape.EndDate)
	if err != nil {
		return fmt.Errorf("scrape.end_date must be YYYY-MM-DD, got %q", cfg.Scrape.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("scrape.end_date %s is before scrape.start_date %s",
			cfg.Scrape.EndDate, cfg.Scrape.StartDate)
	}
	if cfg.Scrape.MaxPages < 1 {
		return fmt.Errorf("scrape.max_pages must be >= 1, got %d", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.Delay < 0 {
		return fmt.Errorf("scrape.delay must be >= 0")
	}
	if cfg.Scrape.MaxRetries < 1 {
		return fmt.Errorf("scrape.max_retries must be >= 1, got %d", cfg.Scrape.MaxRetries)
	}
	if len(cfg.Scrape.Sources) == 0 {
		return fmt.Errorf("scrape.sources must not be empty")
	}
	for _, s := range cfg.Scrape.Sources {
		if !validSources[s] {
			return fmt.Errorf("unknown source %q (valid: yahoo, udn, cw, ltn, cna)", s)
		}
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Browser.NavTimeout <= 0 {
		return fmt.Errorf("browser.nav_timeout must be > 0")
	}

	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type must be one of csv, jsonl, mongodb, got %q", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
	}

	return nil
}
