package sentiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/twfinlab/stocknews/internal/finmind"
)

// FileName derives the analysis file name from the input file,
// e.g. apinews_2330_2026-01-01_to_2026-02-23.csv becomes
// apinews_2330_2026-01-01_to_2026-02-23_analysis.csv.
func FileName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_analysis.csv"
}

// ReadNewsCSV reads an API-news CSV file back into news items. Columns are
// resolved by header name so column order does not matter.
func ReadNewsCSV(path string) ([]finmind.NewsItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}

	// Our own writer prefixes a UTF-8 BOM; strip it off the first header.
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, fmt.Errorf("input %s has no title column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	items := make([]finmind.NewsItem, 0, len(records)-1)
	for _, row := range records[1:] {
		items = append(items, finmind.NewsItem{
			StockID: field(row, "stock_id"),
			Date:    field(row, "date"),
			Title:   field(row, "title"),
			Link:    field(row, "link"),
			Source:  field(row, "source"),
		})
	}
	return items, nil
}

// WriteCSV writes analyzed rows to a UTF-8-BOM CSV file at path. Unscored
// rows get empty analysis columns.
func WriteCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{
		"stock_id", "date", "title", "link", "source",
		"sentiment_score", "impact_intensity", "certainty", "time_horizon",
		"summary", "evidence", "reason",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, row := range rows {
		it := row.Item
		rec := []string{it.StockID, it.Date, it.Title, it.Link, it.Source}
		if a := row.Analysis; a != nil {
			rec = append(rec,
				num(a.SentimentScore), num(a.ImpactIntensity),
				num(a.Certainty), num(a.TimeHorizon),
				a.Summary, a.Evidence, a.Reason)
		} else {
			rec = append(rec, "", "", "", "", "", "", "")
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
