// Package pipeline orchestrates a scrape run end to end: link collection
// across all enabled sources, paced article extraction, relevance and date
// filtering, deduplication, and persistence. Individual failures degrade the
// result instead of aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twfinlab/stocknews/internal/collector"
	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/storage"
	"github.com/twfinlab/stocknews/internal/types"
)

// LinkCollector gathers article links from one source's search results.
type LinkCollector interface {
	Collect(ctx context.Context, site collector.Site, keyword string, dr types.DateRange) []types.LinkRecord
}

// ArticleExtractor turns a link record into an article, or reports failure.
type ArticleExtractor interface {
	Extract(ctx context.Context, rec types.LinkRecord) (types.Article, bool)
}

// SessionResetter clears browser session state between sources.
type SessionResetter interface {
	ResetSession() error
}

// Options wires the pipeline's collaborators.
type Options struct {
	Collector LinkCollector
	Extractor ArticleExtractor
	Storage   storage.Storage
	Sites     []collector.Site

	// Resetter is optional; when set it runs before each source.
	Resetter SessionResetter

	Config *config.ScrapeConfig
	Logger *slog.Logger
}

// Result summarizes a completed run.
type Result struct {
	LinksFound     int
	LinksUnique    int
	Extracted      int
	ExtractFailed  int
	Irrelevant     int
	DuplicateTitle int
	OutOfRange     int
	Stored         int
}

// Pipeline runs the scrape stages in order.
type Pipeline struct {
	collector LinkCollector
	extractor ArticleExtractor
	storage   storage.Storage
	sites     []collector.Site
	resetter  SessionResetter

	keyword string
	dr      types.DateRange
	delay   time.Duration

	metrics *Metrics
	logger  *slog.Logger
}

// New creates a Pipeline from options. The configured date range is
// validated here so Run can assume it is well formed.
func New(opts Options) (*Pipeline, error) {
	dr, err := types.NewDateRange(opts.Config.StartDate, opts.Config.EndDate)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &Pipeline{
		collector: opts.Collector,
		extractor: opts.Extractor,
		storage:   opts.Storage,
		sites:     opts.Sites,
		resetter:  opts.Resetter,
		keyword:   opts.Config.Keyword,
		dr:        dr,
		delay:     opts.Config.Delay,
		metrics:   NewMetrics(),
		logger:    opts.Logger.With("component", "pipeline"),
	}, nil
}

// Run executes a full scrape: collect, extract, filter, store. It always
// runs to completion; per-source and per-article failures only shrink the
// output. The returned error reflects storage problems, never scraping ones.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("run starting",
		"keyword", p.keyword,
		"start", p.dr.StartString(), "end", p.dr.EndString(),
		"sources", len(p.sites))

	records := p.collect(ctx)
	articles := p.extract(ctx, records)
	articles = p.filter(articles)

	var storeErr error
	if len(articles) > 0 {
		if err := p.storage.Store(articles); err != nil {
			p.logger.Error("store failed", "error", err)
			storeErr = err
		} else {
			p.metrics.Stored.Add(int64(len(articles)))
		}
	} else {
		p.logger.Warn("no articles to store")
	}

	p.metrics.LogSummary(p.logger)
	return p.result(), storeErr
}

// collect gathers links from every source and deduplicates them by
// normalized URL, keeping the first occurrence's source tag.
func (p *Pipeline) collect(ctx context.Context) []types.LinkRecord {
	dedup := NewDeduplicator(256)
	var unique []types.LinkRecord

	for _, site := range p.sites {
		if ctx.Err() != nil {
			break
		}

		if p.resetter != nil {
			// A fresh session keeps one source's cookies (consent
			// banners, paywall counters) from leaking into the next.
			if err := p.resetter.ResetSession(); err != nil {
				p.logger.Warn("session reset failed", "source", site.Source(), "error", err)
			}
		}

		records := p.collector.Collect(ctx, site, p.keyword, p.dr)
		p.metrics.LinksFound.Add(int64(len(records)))

		for _, rec := range records {
			if dedup.Mark(types.NormalizeURL(rec.URL)) {
				unique = append(unique, rec)
			}
		}
	}

	p.metrics.LinksUnique.Add(int64(len(unique)))
	p.logger.Info("collection done",
		"links", p.metrics.LinksFound.Load(), "unique", len(unique))
	return unique
}

// extract downloads and parses each collected link, pacing requests with the
// configured delay. Articles from date-filtered searches that carry no
// in-page date are backfilled with the range start.
func (p *Pipeline) extract(ctx context.Context, records []types.LinkRecord) []types.Article {
	var articles []types.Article

	for i, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			time.Sleep(p.delay)
		}

		art, ok := p.extractor.Extract(ctx, rec)
		if !ok {
			p.metrics.ExtractFailed.Add(1)
			p.logger.Debug("extraction failed", "url", rec.URL, "source", rec.Source)
			continue
		}

		if art.PublishDate == "" && rec.DateFiltered {
			art.PublishDate = p.dr.StartString()
		}

		p.metrics.Extracted.Add(1)
		articles = append(articles, art)
	}

	p.logger.Info("extraction done",
		"extracted", p.metrics.Extracted.Load(),
		"failed", p.metrics.ExtractFailed.Load())
	return articles
}

func (p *Pipeline) result() *Result {
	return &Result{
		LinksFound:     int(p.metrics.LinksFound.Load()),
		LinksUnique:    int(p.metrics.LinksUnique.Load()),
		Extracted:      int(p.metrics.Extracted.Load()),
		ExtractFailed:  int(p.metrics.ExtractFailed.Load()),
		Irrelevant:     int(p.metrics.Irrelevant.Load()),
		DuplicateTitle: int(p.metrics.DuplicateTitle.Load()),
		OutOfRange:     int(p.metrics.OutOfRange.Load()),
		Stored:         int(p.metrics.Stored.Load()),
	}
}
