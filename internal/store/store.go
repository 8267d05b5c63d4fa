// Package store defines storage interfaces for persisting and retrieving
// bar data, combination-search summaries, and full evaluation reports.
package store

import (
	"context"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/domain"
	"github.com/m-marqx/Beautiful-Model/internal/evaluate"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar, market string) error

	// ReadBars returns bars for the given symbol and market within [start, end].
	ReadBars(ctx context.Context, symbol string, market string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in the given market.
	ListSymbols(ctx context.Context, market string) ([]string, error)
}

// Summary is one combination's condensed outcome, the row shape of the
// results database.
type Summary struct {
	Key             string
	Symbol          string
	Indicator       string
	FinalReturn     float64
	MaxDrawdown     float64
	Accuracy        float64
	Trades          int64
	ValidationStart time.Time
	CreatedAt       time.Time
}

// ResultStore persists per-combination summaries.
type ResultStore interface {
	// SaveSummary inserts or replaces the summary for (symbol, key).
	SaveSummary(ctx context.Context, s Summary) error

	// ListSummaries returns all summaries for a symbol, best final return
	// first.
	ListSummaries(ctx context.Context, symbol string) ([]Summary, error)
}

// ReportWriter persists full evaluation reports for later inspection.
type ReportWriter interface {
	// WriteReport persists the bar-level series of one combination report.
	WriteReport(ctx context.Context, symbol, key string, report *evaluate.Report) error
}
