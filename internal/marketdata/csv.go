package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/twfinlab/stocknews/internal/types"
)

// FileName builds the output file name for a quotes run,
// e.g. quotes_2026-01-01_to_2026-02-23.csv.
func FileName(dr types.DateRange) string {
	return fmt.Sprintf("quotes_%s_to_%s.csv", dr.StartString(), dr.EndString())
}

// WriteCSV writes price bars to a UTF-8-BOM CSV file at path.
func WriteCSV(path string, bars []Bar) error {
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
	header := []string{"Date", "Ticker", "Open", "High", "Low", "Close", "AdjClose", "Volume"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bars {
		row := []string{
			b.Date,
			b.Ticker,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.AdjClose, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
