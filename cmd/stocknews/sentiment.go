package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/sentiment"
)

var (
	sentimentOutputDir string
	sentimentProvider  string
	sentimentEndpoint  string
	sentimentModel     string
	sentimentAPIKey    string
	sentimentNoFetch   bool
)

// sentimentCmd creates the "sentiment" subcommand.
func sentimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentiment [news-csv]",
		Short: "Score API-news rows with an LLM",
		Long: `Read an apinews CSV file, fetch each linked article's body, and ask an
LLM (a local Ollama server by default) to score each row: sentiment,
impact intensity, certainty, and time horizon, with a summary and
reasoning. Results are written to a sibling *_analysis.csv file; rows
the model fails on are kept with empty analysis columns.`,
		Args: cobra.ExactArgs(1),
		RunE: runSentiment,
	}

	cmd.Flags().StringVarP(&sentimentOutputDir, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&sentimentProvider, "provider", "", "llm provider (ollama or openai)")
	cmd.Flags().StringVar(&sentimentEndpoint, "endpoint", "", "llm endpoint URL")
	cmd.Flags().StringVar(&sentimentModel, "model", "", "model name")
	cmd.Flags().StringVar(&sentimentAPIKey, "api-key", "", "API key (openai provider)")
	cmd.Flags().BoolVar(&sentimentNoFetch, "no-fetch", false, "score from titles only, skip article fetches")

	return cmd
}

func runSentiment(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applySentimentOverrides(cfg)

	logger := setupLogger(&cfg.Logging)

	inputPath := args[0]
	items, err := sentiment.ReadNewsCSV(inputPath)
	if err != nil {
		return err
	}

	llm, err := sentiment.NewLLMClient(&cfg.Sentiment, logger)
	if err != nil {
		return err
	}

	var content *sentiment.ContentFetcher
	if !sentimentNoFetch {
		httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
		if err != nil {
			return fmt.Errorf("create fetcher: %w", err)
		}
		defer httpFetcher.Close()
		content = sentiment.NewContentFetcher(httpFetcher, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer := sentiment.NewAnalyzer(llm, content, logger)
	rows, err := analyzer.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	path := filepath.Join(cfg.Storage.OutputDir, sentiment.FileName(inputPath))
	if err := sentiment.WriteCSV(path, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	scored := 0
	for _, row := range rows {
		if row.Analysis != nil {
			scored++
		}
	}
	fmt.Printf("Wrote %d rows (%d scored) to %s\n", len(rows), scored, path)
	return nil
}

// applySentimentOverrides applies the sentiment-command flags to the config.
func applySentimentOverrides(cfg *config.Config) {
	if sentimentOutputDir != "" {
		cfg.Storage.OutputDir = sentimentOutputDir
	}
	if sentimentProvider != "" {
		cfg.Sentiment.Provider = sentimentProvider
	}
	if sentimentEndpoint != "" {
		cfg.Sentiment.Endpoint = sentimentEndpoint
	}
	if sentimentModel != "" {
		cfg.Sentiment.Model = sentimentModel
	}
	if sentimentAPIKey != "" {
		cfg.Sentiment.APIKey = sentimentAPIKey
	}
}
