// Package finmind fetches structured Taiwan-stock news metadata from the
// FinMind v4 data API. Unlike the scraping pipeline, rows here are API-born
// and carry a stock id instead of scraped body text.
package finmind

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

// NewsItem is one row of the TaiwanStockNews dataset.
type NewsItem struct {
	StockID string `json:"stock_id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// Client queries the FinMind data API.
type Client struct {
	http   *resty.Client
	token  string
	logger *slog.Logger
}

// NewClient creates a FinMind API client.
func NewClient(cfg *config.FinMindConfig, logger *slog.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)

	return &Client{
		http:   client,
		token:  cfg.Token,
		logger: logger.With("component", "finmind"),
	}
}

// StockNews fetches TaiwanStockNews rows for one stock id over an inclusive
// date range, in the order the API returns them (ascending by date).
func (c *Client) StockNews(ctx context.Context, stockID string, dr types.DateRange) ([]NewsItem, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("dataset", "TaiwanStockNews").
		SetQueryParam("data_id", stockID).
		SetQueryParam("start_date", dr.StartString()).
		SetQueryParam("end_date", dr.EndString())
	if c.token != "" {
		req.SetQueryParam("token", c.token)
	}

	resp, err := req.Get("")
	if err != nil {
		return nil, fmt.Errorf("finmind request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, &types.FetchError{
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("finmind: unexpected status"),
			Retryable:  resp.StatusCode() == 429 || resp.StatusCode() >= 500,
		}
	}

	body := resp.Body()
	if status := gjson.GetBytes(body, "status"); status.Exists() && status.Int() != 200 {
		return nil, fmt.Errorf("finmind: api status %d: %s",
			status.Int(), gjson.GetBytes(body, "msg").String())
	}

	var items []NewsItem
	gjson.GetBytes(body, "data").ForEach(func(_, row gjson.Result) bool {
		items = append(items, NewsItem{
			StockID: row.Get("stock_id").String(),
			Date:    row.Get("date").String(),
			Title:   row.Get("title").String(),
			Link:    row.Get("link").String(),
			Source:  row.Get("source").String(),
		})
		return true
	})

	c.logger.Info("stock news fetched", "stock_id", stockID, "rows", len(items))
	return items, nil
}
