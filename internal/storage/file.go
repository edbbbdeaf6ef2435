package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/twfinlab/stocknews/internal/types"
)

// csvHeader is the fixed column order of article CSV files.
var csvHeader = []string{"title", "text", "publish_date", "source", "url"}

// utf8BOM makes Excel open the file as UTF-8 instead of the locale codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// --- CSV Storage ---

// CSVStorage writes articles as CSV rows with a UTF-8 BOM prefix.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates a CSV file storage at the given path.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	if _, err := f.Write(utf8BOM); err != nil {
		f.Close()
		return nil, fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(articles []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		row := []string{a.Title, a.Text, a.PublishDate, string(a.Source), a.URL}
		if err := s.writer.Write(row); err != nil {
			return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write row: %w", err)}
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "articles", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes articles as newline-delimited JSON (streaming writes).
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a JSONL file storage at the given path.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(articles []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		if err := s.enc.Encode(a); err != nil {
			return &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("encode: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "articles", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
