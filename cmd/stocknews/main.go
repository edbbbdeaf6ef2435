package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/twfinlab/stocknews/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stocknews",
		Short: "stocknews — Taiwanese financial-news scraper",
		Long: `stocknews collects Taiwanese stock-market news for a keyword across
Yahoo股市, 經濟日報, 天下雜誌, 自由時報, and 中央社, extracts and cleans
article text, and writes the results to CSV, JSONL, or MongoDB.

It can also fetch structured news metadata from the FinMind API, download
daily price history from the Yahoo Finance chart API, and score fetched
news with an LLM.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(apinewsCmd())
	rootCmd.AddCommand(quotesCmd())
	rootCmd.AddCommand(sentimentCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stocknews %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Keyword:          %s\n", cfg.Scrape.Keyword)
			fmt.Printf("  Date Range:       %s .. %s\n", cfg.Scrape.StartDate, cfg.Scrape.EndDate)
			fmt.Printf("  Max Pages:        %d\n", cfg.Scrape.MaxPages)
			fmt.Printf("  Delay:            %s\n", cfg.Scrape.Delay)
			fmt.Printf("  Max Retries:      %d\n", cfg.Scrape.MaxRetries)
			fmt.Printf("  Sources:          %v\n", cfg.Scrape.Sources)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:          %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Headless:         %v\n", cfg.Browser.Headless)
			fmt.Printf("  Nav Timeout:      %s\n", cfg.Browser.NavTimeout)
			fmt.Printf("  Window Size:      %s\n", cfg.Browser.WindowSize)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:             %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Dir:       %s\n", cfg.Storage.OutputDir)
			fmt.Printf("\nFinMind:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.FinMind.BaseURL)
			fmt.Printf("  Token Set:        %v\n", cfg.FinMind.Token != "")
			fmt.Printf("\nMarket:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Market.BaseURL)
			fmt.Printf("\nSentiment:\n")
			fmt.Printf("  Provider:         %s\n", cfg.Sentiment.Provider)
			fmt.Printf("  Endpoint:         %s\n", cfg.Sentiment.Endpoint)
			fmt.Printf("  Model:            %s\n", cfg.Sentiment.Model)
			return nil
		},
	}
}

// setupLogger creates the structured logger from logging config, with the
// verbose flag forcing debug level.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}
