// Package collector discovers article URLs for a keyword across the five
// supported news sources. Each source contributes its own search-URL
// template, wait condition, and link-validation heuristics; the pagination,
// dedup, and backpressure scaffold is shared.
package collector

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// Site describes one news source's search strategy.
type Site interface {
	// Source identifies the news origin.
	Source() types.Source

	// DateFiltered reports whether the search URL already constrains
	// results to the requested date range.
	DateFiltered() bool

	// PageURL builds the search URL for the zero-based page index.
	PageURL(keyword string, dr types.DateRange, page int) string

	// Wait returns the render wait used on result pages.
	Wait() fetcher.RenderWait

	// Links extracts normalized article URLs from a rendered results
	// page, in discovery order.
	Links(html string, dr types.DateRange) []string
}

// Collector paginates a site's search results and accumulates article links.
type Collector struct {
	renderer fetcher.Renderer
	maxPages int
	delay    time.Duration
	logger   *slog.Logger
}

// New creates a Collector driving the given renderer.
func New(renderer fetcher.Renderer, cfg *config.ScrapeConfig, logger *slog.Logger) *Collector {
	return &Collector{
		renderer: renderer,
		maxPages: cfg.MaxPages,
		delay:    cfg.Delay,
		logger:   logger.With("component", "collector"),
	}
}

// Collect paginates the site's search results for keyword and returns
// deduplicated link records in discovery order. Failures terminate the
// site's pagination early and return whatever was accumulated; they are
// never fatal.
func (c *Collector) Collect(ctx context.Context, site Site, keyword string, dr types.DateRange) []types.LinkRecord {
	var records []types.LinkRecord
	seen := make(map[string]struct{})

	for page := 0; page < c.maxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := site.PageURL(keyword, dr, page)
		html, err := c.renderer.Render(ctx, pageURL, site.Wait())
		if err != nil {
			c.logger.Warn("page fetch failed, stopping source",
				"source", site.Source(), "page", page, "error",
				&types.CollectError{Source: site.Source(), Page: page, Err: err})
			break
		}

		var fresh int
		for _, link := range site.Links(html, dr) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			records = append(records, types.LinkRecord{
				URL:          link,
				Source:       site.Source(),
				DateFiltered: site.DateFiltered(),
			})
			fresh++
		}

		c.logger.Debug("page scraped", "source", site.Source(), "page", page, "links", fresh)

		// An empty page means pagination is exhausted.
		if fresh == 0 {
			break
		}

		time.Sleep(c.delay)
	}

	c.logger.Info("source done", "source", site.Source(), "links", len(records))
	return records
}

// SiteFor maps a config source key to its Site implementation.
func SiteFor(name string) (Site, bool) {
	switch name {
	case "yahoo":
		return Yahoo{}, true
	case "udn":
		return UDN{}, true
	case "cw":
		return CW{}, true
	case "ltn":
		return LTN{}, true
	case "cna":
		return CNA{}, true
	default:
		return nil, false
	}
}

// SitesFor maps config source keys to Site implementations, preserving
// order and skipping unknown names.
func SitesFor(names []string) []Site {
	sites := make([]Site, 0, len(names))
	for _, name := range names {
		if s, ok := SiteFor(name); ok {
			sites = append(sites, s)
		}
	}
	return sites
}

// parseDoc parses rendered HTML into a goquery document. Parse failures
// yield an empty document, which extracts zero links.
func parseDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}
