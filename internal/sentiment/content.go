package sentiment

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/twfinlab/stocknews/internal/cleaner"
	"github.com/twfinlab/stocknews/internal/fetcher"
)

// Body length bounds, in runes. Anything shorter than minBodyRunes is
// treated as chrome rather than an article; anything past maxBodyRunes is
// cut to keep the prompt small.
const (
	minBodyRunes = 80
	maxBodyRunes = 2000
)

// containerSelectors are tried in order against common news layouts.
var containerSelectors = []string{
	"article",
	".article-content",
	".caas-body",
	".story",
	".news-content",
}

// ContentFetcher retrieves and trims article bodies for prompting.
type ContentFetcher struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewContentFetcher creates a ContentFetcher over the given HTTP fetcher.
func NewContentFetcher(f fetcher.Fetcher, logger *slog.Logger) *ContentFetcher {
	return &ContentFetcher{
		fetcher: f,
		logger:  logger.With("component", "sentiment_content"),
	}
}

// Fetch returns the trimmed article body behind rawURL, or "" when the page
// cannot be fetched or yields no plausible body. Failure here only degrades
// the prompt, so it is never an error.
func (c *ContentFetcher) Fetch(ctx context.Context, rawURL string) string {
	page, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		c.logger.Debug("content fetch failed", "url", rawURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		c.logger.Debug("content parse failed", "url", rawURL, "error", err)
		return ""
	}
	doc.Find("script, style, nav, footer, header, aside").Remove()

	for _, sel := range containerSelectors {
		if body := trimBody(doc.Find(sel).First().Text()); body != "" {
			return body
		}
	}
	return ""
}

// trimBody cleans the raw container text and applies the length bounds.
func trimBody(raw string) string {
	body := cleaner.Clean(strings.TrimSpace(raw))
	runes := []rune(body)
	if len(runes) < minBodyRunes {
		return ""
	}
	if len(runes) > maxBodyRunes {
		body = string(runes[:maxBodyRunes])
	}
	return body
}
