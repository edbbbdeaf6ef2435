package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testRange(t *testing.T) types.DateRange {
	t.Helper()
	dr, err := types.NewDateRange("2026-02-01", "2026-02-23")
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

// Two trading days at 09:00 Taipei (UTC+8); the middle day is null (halted).
const chartBody = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "2330.TW", "gmtoffset": 28800},
			"timestamp": [1770685200, 1770771600, 1770858000],
			"indicators": {
				"quote": [{
					"open":   [600.0, null, 610.0],
					"high":   [612.0, null, 618.0],
					"low":    [598.0, null, 605.0],
					"close":  [610.0, null, 615.0],
					"volume": [25000000, null, 31000000]
				}],
				"adjclose": [{"adjclose": [608.5, null, 613.4]}]
			}
		}],
		"error": null
	}
}`

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/2330.TW") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	c := NewClient(&config.MarketConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	bars, err := c.History(context.Background(), "2330.TW", testRange(t))
	if err != nil {
		t.Fatal(err)
	}

	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 (null day skipped)", len(bars))
	}
	first := bars[0]
	if first.Ticker != "2330.TW" || first.Open != 600.0 || first.AdjClose != 608.5 {
		t.Errorf("unexpected first bar: %+v", first)
	}
	if first.Volume != 25000000 {
		t.Errorf("volume = %d", first.Volume)
	}
	// 1770685200 UTC + 8h offset lands on 2026-02-10 in exchange time.
	if first.Date != "2026-02-10" {
		t.Errorf("date = %q, want 2026-02-10", first.Date)
	}
}

func TestHistoryTruncatedQuoteArrays(t *testing.T) {
	// Three timestamps but only the first quote entry populated across
	// every array; the short arrays must not be indexed past their end.
	const truncated = `{
		"chart": {
			"result": [{
				"meta": {"symbol": "2330.TW", "gmtoffset": 28800},
				"timestamp": [1770685200, 1770771600, 1770858000],
				"indicators": {
					"quote": [{
						"open":   [600.0, 605.0],
						"high":   [612.0],
						"low":    [598.0],
						"close":  [610.0],
						"volume": [25000000]
					}],
					"adjclose": [{"adjclose": [608.5]}]
				}
			}],
			"error": null
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, truncated)
	}))
	defer srv.Close()

	c := NewClient(&config.MarketConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	bars, err := c.History(context.Background(), "2330.TW", testRange(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1 (only fully populated day)", len(bars))
	}
	b := bars[0]
	if b.Date != "2026-02-10" || b.High != 612.0 || b.Volume != 25000000 {
		t.Errorf("unexpected bar: %+v", b)
	}
}

func TestHistoryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null,
			"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	c := NewClient(&config.MarketConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	if _, err := c.History(context.Background(), "BOGUS.TW", testRange(t)); err == nil {
		t.Fatal("expected error for chart error payload")
	}
}

func TestHistoryAllSortsAndSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/DEAD.TW") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	c := NewClient(&config.MarketConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	bars, err := c.HistoryAll(context.Background(), []string{"DEAD.TW", "2330.TW"}, testRange(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Ticker > bars[i].Ticker ||
			(bars[i-1].Ticker == bars[i].Ticker && bars[i-1].Date > bars[i].Date) {
			t.Errorf("bars not sorted at %d: %+v then %+v", i, bars[i-1], bars[i])
		}
	}
}

func TestHistoryAllAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(&config.MarketConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	if _, err := c.HistoryAll(context.Background(), []string{"A.TW", "B.TW"}, testRange(t)); err == nil {
		t.Fatal("expected error when every ticker fails")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(testRange(t)))
	bars := []Bar{
		{Date: "2026-02-10", Ticker: "2330.TW", Open: 600, High: 612, Low: 598, Close: 610, AdjClose: 608.5, Volume: 25000000},
	}
	if err := WriteCSV(path, bars); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 3 || raw[0] != 0xEF || raw[1] != 0xBB || raw[2] != 0xBF {
		t.Error("missing UTF-8 BOM")
	}
	content := string(raw[3:])
	if !strings.HasPrefix(content, "Date,Ticker,Open,High,Low,Close,AdjClose,Volume\n") {
		t.Errorf("header mismatch:\n%s", content)
	}
	if !strings.Contains(content, "2026-02-10,2330.TW,600,612,598,610,608.5,25000000") {
		t.Errorf("row mismatch:\n%s", content)
	}
}
