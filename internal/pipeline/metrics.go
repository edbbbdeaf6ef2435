package pipeline

import (
	"log/slog"
	"sync/atomic"
)

// Metrics tracks per-run counters across the pipeline stages.
type Metrics struct {
	// Collection
	LinksFound  atomic.Int64
	LinksUnique atomic.Int64

	// Extraction
	Extracted     atomic.Int64
	ExtractFailed atomic.Int64

	// Filtering
	Irrelevant     atomic.Int64
	DuplicateTitle atomic.Int64
	OutOfRange     atomic.Int64

	// Output
	Stored atomic.Int64
}

// NewMetrics creates a zeroed Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Snapshot returns all counters as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"links_found":     m.LinksFound.Load(),
		"links_unique":    m.LinksUnique.Load(),
		"extracted":       m.Extracted.Load(),
		"extract_failed":  m.ExtractFailed.Load(),
		"irrelevant":      m.Irrelevant.Load(),
		"duplicate_title": m.DuplicateTitle.Load(),
		"out_of_range":    m.OutOfRange.Load(),
		"stored":          m.Stored.Load(),
	}
}

// LogSummary emits the final counters at info level.
func (m *Metrics) LogSummary(logger *slog.Logger) {
	attrs := make([]any, 0, 16)
	for k, v := range m.Snapshot() {
		attrs = append(attrs, k, v)
	}
	logger.Info("run summary", attrs...)
}
