package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/finmind"
	"github.com/twfinlab/stocknews/internal/marketdata"
)

var (
	dataStart     string
	dataEnd       string
	dataOutputDir string
	finmindToken  string
)

// apinewsCmd creates the "apinews" subcommand.
func apinewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apinews [stock-id]",
		Short: "Fetch structured news metadata from the FinMind API",
		Long: `Fetch TaiwanStockNews rows for a stock id over a date range and write
them to a UTF-8 CSV file (stock_id, date, title, link, source).`,
		Args: cobra.ExactArgs(1),
		RunE: runAPINews,
	}

	cmd.Flags().StringVar(&dataStart, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dataEnd, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&dataOutputDir, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&finmindToken, "token", "", "FinMind API token")

	return cmd
}

func runAPINews(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyDataOverrides(cfg)
	if finmindToken != "" {
		cfg.FinMind.Token = finmindToken
	}

	logger := setupLogger(&cfg.Logging)
	dr, err := scrapeRange(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stockID := args[0]
	client := finmind.NewClient(&cfg.FinMind, logger)
	items, err := client.StockNews(ctx, stockID, dr)
	if err != nil {
		return fmt.Errorf("fetch news: %w", err)
	}

	path := filepath.Join(cfg.Storage.OutputDir, finmind.FileName(stockID, dr))
	if err := finmind.WriteCSV(path, items); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(items), path)
	return nil
}

// quotesCmd creates the "quotes" subcommand.
func quotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes [ticker...]",
		Short: "Download daily price history for tickers",
		Long: `Download daily OHLCV bars for one or more tickers (e.g. 2330.TW) over a
date range and write them to a long-format UTF-8 CSV file sorted by
ticker then date.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQuotes,
	}

	cmd.Flags().StringVar(&dataStart, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dataEnd, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&dataOutputDir, "output", "o", "", "output directory")

	return cmd
}

func runQuotes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyDataOverrides(cfg)

	logger := setupLogger(&cfg.Logging)
	dr, err := scrapeRange(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := marketdata.NewClient(&cfg.Market, logger)
	bars, err := client.HistoryAll(ctx, args, dr)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	path := filepath.Join(cfg.Storage.OutputDir, marketdata.FileName(dr))
	if err := marketdata.WriteCSV(path, bars); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Wrote %d bars to %s\n", len(bars), path)
	return nil
}

// applyDataOverrides applies the shared data-command flags to the config.
func applyDataOverrides(cfg *config.Config) {
	if dataStart != "" {
		cfg.Scrape.StartDate = dataStart
	}
	if dataEnd != "" {
		cfg.Scrape.EndDate = dataEnd
	}
	if dataOutputDir != "" {
		cfg.Storage.OutputDir = dataOutputDir
	}
}
