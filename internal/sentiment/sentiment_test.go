package sentiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/finmind"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func sentimentConfig(endpoint string) *config.SentimentConfig {
	return &config.SentimentConfig{
		Provider:    ProviderOllama,
		Endpoint:    endpoint,
		Model:       "llama3.1:latest",
		Temperature: 0.2,
		MaxTokens:   800,
		Timeout:     5 * time.Second,
	}
}

const analysisJSON = `{"sentiment_score": 0.8, "impact_intensity": 0.6,
	"certainty": 0.7, "time_horizon": 1.0,
	"summary": "法說會釋出正面展望", "evidence": "上調全年資本支出",
	"reason": "需求強勁"}`

func TestAnalyzeOllama(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if model := gjson.GetBytes(body, "model").String(); model != "llama3.1:latest" {
			t.Errorf("model = %q", model)
		}
		gotPrompt = gjson.GetBytes(body, "prompt").String()
		fmt.Fprintf(w, `{"response": %q}`, analysisJSON)
	}))
	defer srv.Close()

	llm, err := NewLLMClient(sentimentConfig(srv.URL), testLogger)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(llm, nil, testLogger)
	analysis, err := a.Analyze(context.Background(), finmind.NewsItem{
		StockID: "2330", Title: "台積電法說釋利多",
	})
	if err != nil {
		t.Fatal(err)
	}

	if analysis.SentimentScore != 0.8 || analysis.TimeHorizon != 1.0 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
	if analysis.Summary != "法說會釋出正面展望" {
		t.Errorf("summary = %q", analysis.Summary)
	}
	if !strings.Contains(gotPrompt, "2330") || !strings.Contains(gotPrompt, "台積電法說釋利多") {
		t.Errorf("prompt missing stock id or title:\n%s", gotPrompt)
	}
	// No content fetcher, so the prompt must carry the title-only notice.
	if !strings.Contains(gotPrompt, noBodyNotice) {
		t.Errorf("prompt missing no-body notice:\n%s", gotPrompt)
	}
}

func TestAnalyzeOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth = %q", auth)
		}
		fmt.Fprintf(w, `{"choices": [{"message": {"content": %q}}]}`, analysisJSON)
	}))
	defer srv.Close()

	cfg := sentimentConfig(srv.URL)
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "sk-test"
	llm, err := NewLLMClient(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(llm, nil, testLogger)
	analysis, err := a.Analyze(context.Background(), finmind.NewsItem{StockID: "2330", Title: "標題"})
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Certainty != 0.7 {
		t.Errorf("certainty = %v", analysis.Certainty)
	}
}

func TestNewLLMClientRejectsUnknownProvider(t *testing.T) {
	cfg := sentimentConfig("http://localhost:11434")
	cfg.Provider = "bard"
	if _, err := NewLLMClient(cfg, testLogger); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRunKeepsFailedRows(t *testing.T) {
	// The model answers properly for one title and with prose for the
	// other; the unparseable row must survive unscored.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(gjson.GetBytes(body, "prompt").String(), "好消息") {
			fmt.Fprintf(w, `{"response": %q}`, analysisJSON)
			return
		}
		fmt.Fprint(w, `{"response": "很抱歉，我無法分析這則新聞。"}`)
	}))
	defer srv.Close()

	llm, err := NewLLMClient(sentimentConfig(srv.URL), testLogger)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalyzer(llm, nil, testLogger)
	rows, err := a.Run(context.Background(), []finmind.NewsItem{
		{StockID: "2330", Title: "好消息"},
		{StockID: "2330", Title: "難以分析"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Analysis == nil {
		t.Error("first row should be scored")
	}
	if rows[1].Analysis != nil {
		t.Error("second row should be unscored")
	}
	if rows[1].Item.Title != "難以分析" {
		t.Errorf("unscored row lost its item: %+v", rows[1].Item)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"以下是分析結果：\n{\"a\": {\"b\": 2}}\n希望有幫助", `{"a": {"b": 2}}`},
		{"no json here", "{}"},
		{`{"unterminated": `, "{}"},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadNewsCSVRoundTrip(t *testing.T) {
	items := []finmind.NewsItem{
		{StockID: "2330", Date: "2026-02-10", Title: "台積電上漲", Link: "https://news.example/1", Source: "經濟日報"},
		{StockID: "2330", Date: "2026-02-11", Title: "台積電法說", Link: "https://news.example/2", Source: "中央社"},
	}
	path := filepath.Join(t.TempDir(), "apinews_2330.csv")
	if err := finmind.WriteCSV(path, items); err != nil {
		t.Fatal(err)
	}

	got, err := ReadNewsCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	// The first column is behind a BOM on disk; it must still resolve.
	if got[0].StockID != "2330" || got[0].Title != "台積電上漲" {
		t.Errorf("first item = %+v", got[0])
	}
	if got[1].Link != "https://news.example/2" {
		t.Errorf("second link = %q", got[1].Link)
	}
}

func TestWriteCSVMixedRows(t *testing.T) {
	rows := []Row{
		{
			Item: finmind.NewsItem{StockID: "2330", Date: "2026-02-10", Title: "好消息", Link: "https://news.example/1", Source: "經濟日報"},
			Analysis: &Analysis{
				SentimentScore: 0.8, ImpactIntensity: 0.6, Certainty: 0.7, TimeHorizon: 1.0,
				Summary: "正面", Evidence: "資本支出上調", Reason: "需求強勁",
			},
		},
		{Item: finmind.NewsItem{StockID: "2330", Date: "2026-02-11", Title: "未評分", Source: "中央社"}},
	}

	path := filepath.Join(t.TempDir(), "apinews_2330_analysis.csv")
	if err := WriteCSV(path, rows); err != nil {
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
	if !strings.HasPrefix(content, "stock_id,date,title,link,source,sentiment_score,impact_intensity,certainty,time_horizon,summary,evidence,reason\n") {
		t.Errorf("header mismatch:\n%s", content)
	}
	if !strings.Contains(content, "好消息,https://news.example/1,經濟日報,0.8,0.6,0.7,1,正面,資本支出上調,需求強勁") {
		t.Errorf("scored row mismatch:\n%s", content)
	}
	if !strings.Contains(content, "未評分,,中央社,,,,,,,") {
		t.Errorf("unscored row mismatch:\n%s", content)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("/data/apinews_2330_2026-01-01_to_2026-02-23.csv")
	want := "apinews_2330_2026-01-01_to_2026-02-23_analysis.csv"
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

type stubFetcher struct {
	pages map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (*fetcher.Page, error) {
	body, ok := s.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("no page for %s", rawURL)
	}
	return &fetcher.Page{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func (s *stubFetcher) Close() error { return nil }

func TestContentFetcher(t *testing.T) {
	long := strings.Repeat("台積電今日表現亮眼，外資持續買超。", 20)
	page := `<html><body>
		<nav>首頁 股市 國際</nav>
		<article><script>track()</script><p>` + long + `</p></article>
		<footer>版權所有</footer>
	</body></html>`

	c := NewContentFetcher(&stubFetcher{pages: map[string]string{
		"https://news.example/long":  page,
		"https://news.example/short": `<html><body><article>太短</article></body></html>`,
	}}, testLogger)

	body := c.Fetch(context.Background(), "https://news.example/long")
	if body == "" {
		t.Fatal("expected body from article container")
	}
	if strings.Contains(body, "track()") || strings.Contains(body, "首頁") || strings.Contains(body, "版權所有") {
		t.Errorf("page chrome leaked into body: %q", body)
	}
	if n := len([]rune(body)); n > maxBodyRunes {
		t.Errorf("body not truncated: %d runes", n)
	}

	if got := c.Fetch(context.Background(), "https://news.example/short"); got != "" {
		t.Errorf("short container should be discarded, got %q", got)
	}
	if got := c.Fetch(context.Background(), "https://news.example/missing"); got != "" {
		t.Errorf("fetch failure should yield empty body, got %q", got)
	}
}
