package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/twfinlab/stocknews/internal/collector"
	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type stubSite struct {
	src          types.Source
	dateFiltered bool
}

func (s stubSite) Source() types.Source                                        { return s.src }
func (s stubSite) DateFiltered() bool                                          { return s.dateFiltered }
func (s stubSite) PageURL(keyword string, dr types.DateRange, page int) string { return "" }
func (s stubSite) Wait() fetcher.RenderWait                                    { return fetcher.RenderWait{} }
func (s stubSite) Links(html string, dr types.DateRange) []string              { return nil }

type fakeCollector struct {
	records map[types.Source][]types.LinkRecord
}

func (f *fakeCollector) Collect(_ context.Context, site collector.Site, _ string, _ types.DateRange) []types.LinkRecord {
	return f.records[site.Source()]
}

type fakeExtractor struct {
	articles map[string]types.Article
}

func (f *fakeExtractor) Extract(_ context.Context, rec types.LinkRecord) (types.Article, bool) {
	a, ok := f.articles[rec.URL]
	if !ok {
		return types.Article{}, false
	}
	a.Source = rec.Source
	a.URL = rec.URL
	return a, true
}

type fakeStorage struct {
	stored []types.Article
	err    error
}

func (f *fakeStorage) Name() string { return "fake" }
func (f *fakeStorage) Store(articles []types.Article) error {
	f.stored = append(f.stored, articles...)
	return f.err
}
func (f *fakeStorage) Close() error { return nil }

type fakeResetter struct{ calls int }

func (f *fakeResetter) ResetSession() error {
	f.calls++
	return nil
}

func scrapeConfig() *config.ScrapeConfig {
	return &config.ScrapeConfig{
		Keyword:   "台積電",
		StartDate: "2026-02-01",
		EndDate:   "2026-02-23",
		MaxPages:  3,
		Delay:     0,
	}
}

func TestRunEndToEnd(t *testing.T) {
	yahoo := stubSite{src: types.SourceYahoo}
	udn := stubSite{src: types.SourceUDN, dateFiltered: true}

	coll := &fakeCollector{records: map[types.Source][]types.LinkRecord{
		types.SourceYahoo: {
			{URL: "https://a.example/1", Source: types.SourceYahoo},
			{URL: "https://a.example/2", Source: types.SourceYahoo},
			{URL: "https://shared.example/x", Source: types.SourceYahoo},
		},
		types.SourceUDN: {
			// Duplicate of the shared yahoo link; first-seen wins.
			{URL: "https://SHARED.example/x?utm=1", Source: types.SourceUDN, DateFiltered: true},
			{URL: "https://b.example/1", Source: types.SourceUDN, DateFiltered: true},
			{URL: "https://b.example/2", Source: types.SourceUDN, DateFiltered: true},
			{URL: "https://b.example/3", Source: types.SourceUDN, DateFiltered: true},
		},
	}}

	ext := &fakeExtractor{articles: map[string]types.Article{
		"https://a.example/1":      {Title: "台積電上漲", Text: "台積電漲勢", PublishDate: "2026-02-10"},
		"https://a.example/2":      {Title: "無關新聞", Text: "別的公司"},
		"https://shared.example/x": {Title: "台積電擴產", Text: "台積電擴產計畫", PublishDate: "2026-02-15"},
		"https://b.example/1":      {Title: "台積電法說", Text: "台積電展望"}, // no date, date-filtered: backfilled
		"https://b.example/2":      {Title: "台積電上漲", Text: "台積電重複標題", PublishDate: "2026-02-11"},
		"https://b.example/3":      {Title: "台積電舊聞", Text: "台積電歷史", PublishDate: "2025-12-01"},
	}}

	store := &fakeStorage{}
	reset := &fakeResetter{}

	p, err := New(Options{
		Collector: coll,
		Extractor: ext,
		Storage:   store,
		Sites:     []collector.Site{yahoo, udn},
		Resetter:  reset,
		Config:    scrapeConfig(),
		Logger:    testLogger,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.LinksFound != 7 {
		t.Errorf("LinksFound = %d, want 7", res.LinksFound)
	}
	if res.LinksUnique != 6 {
		t.Errorf("LinksUnique = %d, want 6", res.LinksUnique)
	}
	if res.Extracted != 6 {
		t.Errorf("Extracted = %d, want 6", res.Extracted)
	}
	if res.Irrelevant != 1 {
		t.Errorf("Irrelevant = %d, want 1", res.Irrelevant)
	}
	if res.DuplicateTitle != 1 {
		t.Errorf("DuplicateTitle = %d, want 1", res.DuplicateTitle)
	}
	if res.OutOfRange != 1 {
		t.Errorf("OutOfRange = %d, want 1", res.OutOfRange)
	}
	if res.Stored != 3 {
		t.Errorf("Stored = %d, want 3", res.Stored)
	}
	if reset.calls != 2 {
		t.Errorf("ResetSession calls = %d, want 2 (one per source)", reset.calls)
	}

	// The shared link keeps the source that found it first.
	var sharedSource types.Source
	var backfilled string
	for _, a := range store.stored {
		if a.URL == "https://shared.example/x" {
			sharedSource = a.Source
		}
		if a.URL == "https://b.example/1" {
			backfilled = a.PublishDate
		}
	}
	if sharedSource != types.SourceYahoo {
		t.Errorf("shared link source = %q, want first-seen Yahoo", sharedSource)
	}
	if backfilled != "2026-02-01" {
		t.Errorf("date-filtered backfill = %q, want range start", backfilled)
	}
}

func TestRunDeduplicatesEmptyTitles(t *testing.T) {
	site := stubSite{src: types.SourceYahoo}
	coll := &fakeCollector{records: map[types.Source][]types.LinkRecord{
		types.SourceYahoo: {
			{URL: "https://a.example/1", Source: types.SourceYahoo},
			{URL: "https://a.example/2", Source: types.SourceYahoo},
		},
	}}
	// Both articles come back untitled; the empty title is still a dedup
	// key, so only the first survives.
	ext := &fakeExtractor{articles: map[string]types.Article{
		"https://a.example/1": {Title: "", Text: "台積電內文一", PublishDate: "2026-02-10"},
		"https://a.example/2": {Title: "   ", Text: "台積電內文二", PublishDate: "2026-02-11"},
	}}
	store := &fakeStorage{}

	p, err := New(Options{
		Collector: coll, Extractor: ext, Storage: store,
		Sites:  []collector.Site{site},
		Config: scrapeConfig(), Logger: testLogger,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Stored != 1 {
		t.Errorf("Stored = %d, want 1", res.Stored)
	}
	if res.DuplicateTitle != 1 {
		t.Errorf("DuplicateTitle = %d, want 1", res.DuplicateTitle)
	}
	if len(store.stored) != 1 || store.stored[0].URL != "https://a.example/1" {
		t.Errorf("stored = %+v, want only the first untitled article", store.stored)
	}
}

func TestRunExtractionFailuresNotFatal(t *testing.T) {
	site := stubSite{src: types.SourceCW}
	coll := &fakeCollector{records: map[types.Source][]types.LinkRecord{
		types.SourceCW: {
			{URL: "https://cw.example/dead", Source: types.SourceCW},
			{URL: "https://cw.example/live", Source: types.SourceCW},
		},
	}}
	ext := &fakeExtractor{articles: map[string]types.Article{
		"https://cw.example/live": {Title: "台積電報導", Text: "台積電內容", PublishDate: "2026-02-05"},
	}}
	store := &fakeStorage{}

	p, err := New(Options{
		Collector: coll, Extractor: ext, Storage: store,
		Sites:  []collector.Site{site},
		Config: scrapeConfig(), Logger: testLogger,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.ExtractFailed != 1 || res.Stored != 1 {
		t.Errorf("got failed=%d stored=%d, want 1/1", res.ExtractFailed, res.Stored)
	}
}

func TestRunStorageErrorSurfaced(t *testing.T) {
	site := stubSite{src: types.SourceYahoo}
	coll := &fakeCollector{records: map[types.Source][]types.LinkRecord{
		types.SourceYahoo: {{URL: "https://a.example/1", Source: types.SourceYahoo}},
	}}
	ext := &fakeExtractor{articles: map[string]types.Article{
		"https://a.example/1": {Title: "台積電", Text: "台積電本文", PublishDate: "2026-02-10"},
	}}
	store := &fakeStorage{err: errors.New("disk full")}

	p, err := New(Options{
		Collector: coll, Extractor: ext, Storage: store,
		Sites:  []collector.Site{site},
		Config: scrapeConfig(), Logger: testLogger,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected storage error to surface")
	}
	if res == nil || res.Extracted != 1 {
		t.Errorf("result not populated despite storage failure: %+v", res)
	}
}

func TestNewRejectsBadDateRange(t *testing.T) {
	cfg := scrapeConfig()
	cfg.StartDate, cfg.EndDate = cfg.EndDate, cfg.StartDate

	_, err := New(Options{
		Collector: &fakeCollector{}, Extractor: &fakeExtractor{}, Storage: &fakeStorage{},
		Config: cfg, Logger: testLogger,
	})
	if err == nil {
		t.Fatal("expected error for inverted date range")
	}
}

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(4)
	if !d.Mark("a") {
		t.Error("first Mark should be new")
	}
	if d.Mark("a") {
		t.Error("second Mark should be duplicate")
	}
	if !d.Seen("a") || d.Seen("b") {
		t.Error("Seen mismatch")
	}
	if d.Count() != 1 {
		t.Errorf("Count = %d, want 1", d.Count())
	}
}
