package finmind

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twfinlab/stocknews/internal/types"
)

// FileName builds the output file name for an API-news run,
// e.g. apinews_2330_2026-01-01_to_2026-02-23.csv.
func FileName(stockID string, dr types.DateRange) string {
	return fmt.Sprintf("apinews_%s_%s_to_%s.csv", stockID, dr.StartString(), dr.EndString())
}

// WriteCSV writes news items to a UTF-8-BOM CSV file at path.
func WriteCSV(path string, items []NewsItem) error {
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
	if err := w.Write([]string{"stock_id", "date", "title", "link", "source"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := w.Write([]string{it.StockID, it.Date, it.Title, it.Link, it.Source}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
