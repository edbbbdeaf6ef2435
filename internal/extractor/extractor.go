// Package extractor turns a collected article URL into structured article
// text. A readability parse is the primary strategy, retried a bounded
// number of times; a hand-rolled selector heuristic over the raw HTML is
// the fallback. Either way the body is cleaned before it is accepted.
package extractor

import (
	"bytes"
	"context"
	"log/slog"
	neturl "net/url"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/twfinlab/stocknews/internal/cleaner"
	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// MinBodyLen is the minimum article body length, in runes. Shorter bodies
// are treated as extraction failures, both pre- and post-cleaning.
const MinBodyLen = 50

// Extractor runs the two-tier extraction strategy.
type Extractor struct {
	fetcher    fetcher.Fetcher
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// New creates an Extractor over the given HTTP fetcher.
func New(f fetcher.Fetcher, cfg *config.ScrapeConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher:    f,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger.With("component", "extractor"),
	}
}

// Extract attempts to extract the article behind a link record. It returns
// (article, true) on success and (zero, false) when both strategies fail;
// failure is a normal outcome, never an error the caller must branch on.
func (e *Extractor) Extract(ctx context.Context, rec types.LinkRecord) (types.Article, bool) {
	art, ok := e.primary(ctx, rec)
	if !ok {
		art, ok = e.fallback(ctx, rec)
	}
	if !ok {
		return types.Article{}, false
	}

	art.Text = cleaner.Clean(art.Text)
	if utf8.RuneCountInString(art.Text) < MinBodyLen {
		// Cleaning stripped the page down to boilerplate remnants.
		e.logger.Debug("body too short after cleaning", "url", rec.URL)
		return types.Article{}, false
	}
	return art, true
}

// primary downloads the page and runs it through readability, retrying on
// fetch or parse failure up to the retry ceiling.
func (e *Extractor) primary(ctx context.Context, rec types.LinkRecord) (types.Article, bool) {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}
		if attempt > 0 {
			time.Sleep(e.retryDelay)
		}

		page, err := e.fetcher.Fetch(ctx, rec.URL)
		if err != nil {
			e.logger.Debug("primary fetch failed", "url", rec.URL, "attempt", attempt,
				"error", &types.ExtractError{URL: rec.URL, Strategy: "readability", Err: err})
			continue
		}

		pageURL, err := neturl.Parse(page.URL)
		if err != nil {
			continue
		}
		art, err := readability.FromReader(bytes.NewReader(page.Body), pageURL)
		if err != nil {
			e.logger.Debug("readability parse failed", "url", rec.URL, "attempt", attempt, "error", err)
			continue
		}
		if utf8.RuneCountInString(art.TextContent) < MinBodyLen {
			continue
		}

		pub := ""
		if art.PublishedTime != nil {
			pub = art.PublishedTime.Format(types.DateLayout)
		}
		if pub == "" {
			// Readability found no date; scan the raw page and URL.
			pub, _ = dateFromPage(page.Body, rec.URL)
		}

		return types.Article{
			Title:       art.Title,
			Text:        art.TextContent,
			PublishDate: pub,
			Source:      rec.Source,
			URL:         rec.URL,
		}, true
	}
	return types.Article{}, false
}
