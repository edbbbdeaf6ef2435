package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twfinlab/stocknews/internal/collector"
	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/extractor"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/pipeline"
	"github.com/twfinlab/stocknews/internal/storage"
	"github.com/twfinlab/stocknews/internal/types"
)

var (
	scrapeKeyword   string
	scrapeStart     string
	scrapeEnd       string
	scrapeSources   string
	scrapeOutputDir string
	scrapeFormat    string
	scrapeMaxPages  int
	scrapeDelay     string
	scrapeHeadful   bool
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape news articles for a keyword",
		Long: `Scrape news articles mentioning a keyword across all enabled sources
within a date range, and write the cleaned articles to the configured
storage backend.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVarP(&scrapeKeyword, "keyword", "k", "", "search keyword (e.g. 台積電)")
	cmd.Flags().StringVar(&scrapeStart, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scrapeEnd, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scrapeSources, "sources", "", "comma-separated sources: yahoo, udn, cw, ltn, cna")
	cmd.Flags().StringVarP(&scrapeOutputDir, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&scrapeFormat, "format", "f", "", "storage type: csv, jsonl, mongodb")
	cmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "maximum result pages per source")
	cmd.Flags().StringVar(&scrapeDelay, "delay", "", "delay between requests (e.g. 1500ms)")
	cmd.Flags().BoolVar(&scrapeHeadful, "headful", false, "run the browser with a visible window")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyScrapeOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(&cfg.Logging)
	dr, err := scrapeRange(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	browser, err := fetcher.NewBrowser(&cfg.Browser, cfg.Fetcher.UserAgent, logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer browser.Close()

	httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	store, err := storage.New(&cfg.Storage, cfg.Scrape.Keyword, dr, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	p, err := pipeline.New(pipeline.Options{
		Collector: collector.New(browser, &cfg.Scrape, logger),
		Extractor: extractor.New(httpFetcher, &cfg.Scrape, logger),
		Storage:   store,
		Sites:     collector.SitesFor(cfg.Scrape.Sources),
		Resetter:  browser,
		Config:    &cfg.Scrape,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("\nScrape complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Links:     %d found, %d unique\n", res.LinksFound, res.LinksUnique)
	fmt.Printf("  Articles:  %d extracted, %d failed\n", res.Extracted, res.ExtractFailed)
	fmt.Printf("  Filtered:  %d irrelevant, %d duplicate titles, %d out of range\n",
		res.Irrelevant, res.DuplicateTitle, res.OutOfRange)
	fmt.Printf("  Stored:    %d (%s)\n", res.Stored, store.Name())
	return nil
}

func scrapeRange(cfg *config.Config) (types.DateRange, error) {
	return types.NewDateRange(cfg.Scrape.StartDate, cfg.Scrape.EndDate)
}

// applyScrapeOverrides applies scrape command flags over the loaded config.
func applyScrapeOverrides(cfg *config.Config) {
	if scrapeKeyword != "" {
		cfg.Scrape.Keyword = scrapeKeyword
	}
	if scrapeStart != "" {
		cfg.Scrape.StartDate = scrapeStart
	}
	if scrapeEnd != "" {
		cfg.Scrape.EndDate = scrapeEnd
	}
	if scrapeSources != "" {
		var sources []string
		for _, s := range strings.Split(scrapeSources, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		cfg.Scrape.Sources = sources
	}
	if scrapeOutputDir != "" {
		cfg.Storage.OutputDir = scrapeOutputDir
	}
	if scrapeFormat != "" {
		cfg.Storage.Type = strings.ToLower(scrapeFormat)
	}
	if scrapeMaxPages > 0 {
		cfg.Scrape.MaxPages = scrapeMaxPages
	}
	if scrapeDelay != "" {
		if d, err := time.ParseDuration(scrapeDelay); err == nil {
			cfg.Scrape.Delay = d
		}
	}
	if scrapeHeadful {
		cfg.Browser.Headless = false
	}
}
