// Package sentiment scores API-news rows with a language model. Each row's
// article body is fetched and trimmed, the title and body are sent to an
// LLM acting as an equity analyst, and the structured verdict is written
// back out alongside the original row.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/twfinlab/stocknews/internal/finmind"
)

// Analysis is the structured verdict for one news row.
type Analysis struct {
	SentimentScore  float64 `json:"sentiment_score"`
	ImpactIntensity float64 `json:"impact_intensity"`
	Certainty       float64 `json:"certainty"`
	TimeHorizon     float64 `json:"time_horizon"`
	Summary         string  `json:"summary"`
	Evidence        string  `json:"evidence"`
	Reason          string  `json:"reason"`
}

// Row is a news item plus its analysis. Analysis is nil when the model
// call failed; the row is still written so no input is silently dropped.
type Row struct {
	Item     finmind.NewsItem
	Analysis *Analysis
}

// Analyzer drives the per-row fetch-and-score loop.
type Analyzer struct {
	llm     *LLMClient
	content *ContentFetcher
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. content may be nil, in which case every
// row is scored from its title alone.
func NewAnalyzer(llm *LLMClient, content *ContentFetcher, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		llm:     llm,
		content: content,
		logger:  logger.With("component", "sentiment"),
	}
}

// Analyze scores one news item. The article body is fetched best-effort;
// when it cannot be retrieved the model is told to judge from the title.
func (a *Analyzer) Analyze(ctx context.Context, item finmind.NewsItem) (*Analysis, error) {
	var body string
	if a.content != nil && item.Link != "" {
		body = a.content.Fetch(ctx, item.Link)
	}

	out, err := a.llm.Generate(ctx, buildPrompt(item.StockID, item.Title, body))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return parseAnalysis(out)
}

// Run scores every item and returns one row per input, in input order.
// Model failures are logged and leave the row unscored.
func (a *Analyzer) Run(ctx context.Context, items []finmind.NewsItem) ([]Row, error) {
	rows := make([]Row, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		analysis, err := a.Analyze(ctx, item)
		if err != nil {
			a.logger.Warn("analysis failed",
				"stock_id", item.StockID, "title", item.Title, "error", err)
			rows = append(rows, Row{Item: item})
			continue
		}

		a.logger.Info("row analyzed",
			"row", i+1, "total", len(items),
			"sentiment", analysis.SentimentScore, "horizon", analysis.TimeHorizon)
		rows = append(rows, Row{Item: item, Analysis: analysis})
	}
	return rows, nil
}

const noBodyNotice = "（無內文，請僅就標題分析）"

// buildPrompt renders the analyst prompt. The instructions are in
// Traditional Chinese to match the articles; the model must answer with a
// single JSON object.
func buildPrompt(stockID, title, body string) string {
	if strings.TrimSpace(body) == "" {
		body = noBodyNotice
	}

	var b strings.Builder
	b.WriteString("你是一位專業的台股證券分析師，請針對下列關於股票 ")
	b.WriteString(stockID)
	b.WriteString(" 的新聞進行量化分析。\n\n")
	b.WriteString("標題：")
	b.WriteString(title)
	b.WriteString("\n內文：")
	b.WriteString(body)
	b.WriteString("\n\n請僅輸出一個 JSON 物件，包含以下欄位：\n")
	b.WriteString("- sentiment_score：情緒分數，-1.0（極負面）到 1.0（極正面）\n")
	b.WriteString("- impact_intensity：對股價的影響強度，0.0 到 1.0\n")
	b.WriteString("- certainty：判斷的確定性，0.0 到 1.0\n")
	b.WriteString("- time_horizon：影響時效，短期 1.0、中期 0.5、長期 0.2\n")
	b.WriteString("- summary：一句話摘要（繁體中文）\n")
	b.WriteString("- evidence：支持判斷的關鍵句（繁體中文）\n")
	b.WriteString("- reason：判斷理由（繁體中文）\n")
	return b.String()
}

// parseAnalysis decodes the model output into an Analysis.
func parseAnalysis(out string) (*Analysis, error) {
	obj := gjson.Parse(extractJSON(out))
	if !obj.Get("sentiment_score").Exists() {
		return nil, fmt.Errorf("model output missing sentiment_score: %.80s", out)
	}

	return &Analysis{
		SentimentScore:  obj.Get("sentiment_score").Float(),
		ImpactIntensity: obj.Get("impact_intensity").Float(),
		Certainty:       obj.Get("certainty").Float(),
		TimeHorizon:     obj.Get("time_horizon").Float(),
		Summary:         obj.Get("summary").String(),
		Evidence:        obj.Get("evidence").String(),
		Reason:          obj.Get("reason").String(),
	}, nil
}
