// Package storage persists scraped articles. CSV is the primary backend
// (Excel-compatible, BOM-prefixed); JSONL and MongoDB are alternatives, and
// backends can be fanned out together.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

// Storage is the interface for all article storage backends.
type Storage interface {
	// Store persists a batch of articles.
	Store(articles []types.Article) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// ArticleFileName builds the canonical output file name for a scrape run,
// e.g. news_台積電_2026-01-01_to_2026-02-23.csv.
func ArticleFileName(keyword string, dr types.DateRange, ext string) string {
	return fmt.Sprintf("news_%s_%s_to_%s.%s", keyword, dr.StartString(), dr.EndString(), ext)
}

// New creates the storage backend selected by cfg. The scrape parameters
// determine file names for the file-based backends.
func New(cfg *config.StorageConfig, keyword string, dr types.DateRange, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "csv":
		path := filepath.Join(cfg.OutputDir, ArticleFileName(keyword, dr, "csv"))
		return NewCSVStorage(path, logger)
	case "jsonl":
		path := filepath.Join(cfg.OutputDir, ArticleFileName(keyword, dr, "jsonl"))
		return NewJSONLStorage(path, logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, &types.StorageError{Backend: cfg.Type, Err: fmt.Errorf("unsupported storage type")}
	}
}
