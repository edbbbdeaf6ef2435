// Package marketdata downloads daily OHLCV price history from the Yahoo
// Finance chart API and flattens it into long-format rows suitable for CSV
// export alongside the scraped news.
package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

// Bar is one daily price bar for one ticker.
type Bar struct {
	Date     string
	Ticker   string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// Client queries the chart API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a price-history client.
func NewClient(cfg *config.MarketConfig, logger *slog.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	// The chart endpoint rejects requests without a browser-ish UA.
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	return &Client{
		http:   client,
		logger: logger.With("component", "marketdata"),
	}
}

// History fetches daily bars for one ticker over an inclusive date range,
// ascending by date. Days the exchange was closed are absent, and days with
// null quotes are skipped.
func (c *Client) History(ctx context.Context, ticker string, dr types.DateRange) ([]Bar, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("period1", fmt.Sprintf("%d", dr.Start.Unix())).
		SetQueryParam("period2", fmt.Sprintf("%d", dr.End.AddDate(0, 0, 1).Unix())).
		SetQueryParam("interval", "1d").
		SetQueryParam("events", "div,split").
		Get("/" + ticker)
	if err != nil {
		return nil, fmt.Errorf("chart request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, &types.FetchError{
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("chart: unexpected status"),
			Retryable:  resp.StatusCode() == 429 || resp.StatusCode() >= 500,
		}
	}

	body := resp.Body()
	if apiErr := gjson.GetBytes(body, "chart.error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		return nil, fmt.Errorf("chart: %s: %s",
			apiErr.Get("code").String(), apiErr.Get("description").String())
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("chart: empty result for %s", ticker)
	}

	// Timestamps are UTC seconds; shift by the exchange offset so the
	// calendar date matches the trading day, not the UTC day.
	offset := result.Get("meta.gmtoffset").Int()

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	adj := result.Get("indicators.adjclose.0.adjclose").Array()

	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	// The API occasionally returns quote arrays shorter than the
	// timestamp array; index only where all five are populated.
	n := len(timestamps)
	for _, arr := range [][]gjson.Result{opens, highs, lows, closes, volumes} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	var bars []Bar
	for i, ts := range timestamps[:n] {
		if opens[i].Type == gjson.Null {
			continue
		}
		bar := Bar{
			Date:   time.Unix(ts.Int()+offset, 0).UTC().Format(types.DateLayout),
			Ticker: ticker,
			Open:   opens[i].Float(),
			High:   highs[i].Float(),
			Low:    lows[i].Float(),
			Close:  closes[i].Float(),
			Volume: volumes[i].Int(),
		}
		if i < len(adj) && adj[i].Type != gjson.Null {
			bar.AdjClose = adj[i].Float()
		} else {
			bar.AdjClose = bar.Close
		}
		bars = append(bars, bar)
	}

	c.logger.Info("history fetched", "ticker", ticker, "bars", len(bars))
	return bars, nil
}

// HistoryAll fetches bars for every ticker and returns them sorted by ticker
// then date. A ticker that fails is skipped with a warning; the error is
// returned only when every ticker fails.
func (c *Client) HistoryAll(ctx context.Context, tickers []string, dr types.DateRange) ([]Bar, error) {
	var all []Bar
	var lastErr error
	var failed int

	for _, ticker := range tickers {
		bars, err := c.History(ctx, ticker, dr)
		if err != nil {
			c.logger.Warn("ticker failed", "ticker", ticker, "error", err)
			lastErr = err
			failed++
			continue
		}
		all = append(all, bars...)
	}

	if failed == len(tickers) && lastErr != nil {
		return nil, lastErr
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Ticker != all[j].Ticker {
			return all[i].Ticker < all[j].Ticker
		}
		return all[i].Date < all[j].Date
	})
	return all, nil
}
