package finmind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
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

func TestStockNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("dataset") != "TaiwanStockNews" {
			t.Errorf("dataset = %q", q.Get("dataset"))
		}
		if q.Get("data_id") != "2330" {
			t.Errorf("data_id = %q", q.Get("data_id"))
		}
		if q.Get("start_date") != "2026-02-01" || q.Get("end_date") != "2026-02-23" {
			t.Errorf("date range = %q..%q", q.Get("start_date"), q.Get("end_date"))
		}
		if q.Get("token") != "tok123" {
			t.Errorf("token = %q", q.Get("token"))
		}

		fmt.Fprint(w, `{
			"msg": "success",
			"status": 200,
			"data": [
				{"date": "2026-02-10 09:00:00", "stock_id": "2330",
				 "link": "https://news.example/1", "source": "ctee", "title": "台積電擴產"},
				{"date": "2026-02-11 10:30:00", "stock_id": "2330",
				 "link": "https://news.example/2", "source": "udn", "title": "台積電法說"}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(&config.FinMindConfig{
		BaseURL: srv.URL,
		Token:   "tok123",
		Timeout: 5 * time.Second,
	}, testLogger)

	items, err := c.StockNews(context.Background(), "2330", testRange(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "台積電擴產" || items[0].StockID != "2330" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Source != "udn" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestStockNewsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"msg": "token invalid", "status": 402, "data": []}`)
	}))
	defer srv.Close()

	c := NewClient(&config.FinMindConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	if _, err := c.StockNews(context.Background(), "2330", testRange(t)); err == nil {
		t.Fatal("expected error for non-200 api status")
	}
}

func TestStockNewsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(&config.FinMindConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger)
	_, err := c.StockNews(context.Background(), "2330", testRange(t))
	var fe *types.FetchError
	if !errors.As(err, &fe) || !fe.Retryable {
		t.Errorf("expected retryable FetchError, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName("2330", testRange(t)))
	items := []NewsItem{
		{StockID: "2330", Date: "2026-02-10 09:00:00", Title: "台積電擴產", Link: "https://news.example/1", Source: "ctee"},
	}
	if err := WriteCSV(path, items); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 3 || raw[0] != 0xEF || raw[1] != 0xBB || raw[2] != 0xBF {
		t.Error("missing UTF-8 BOM")
	}
	got := string(raw[3:])
	want := "stock_id,date,title,link,source\n"
	if len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("header mismatch:\n%s", got)
	}
}
