// Package fetch downloads historical daily bars into the bar store.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/m-marqx/Beautiful-Model/internal/domain"
	"github.com/m-marqx/Beautiful-Model/internal/store"
	"github.com/m-marqx/Beautiful-Model/internal/util"
)

// Fetcher downloads bars for a set of symbols over a date range.
type Fetcher interface {
	// Name returns the fetcher identifier.
	Name() string
	// Run downloads bars and writes them to the store. It blocks until done
	// or ctx is cancelled.
	Run(ctx context.Context, symbols []string, start, end time.Time) error
}

// Compile-time interface check.
var _ Fetcher = (*AlpacaFetcher)(nil)

// AlpacaFetcher fetches daily bars through the Alpaca market-data API and
// persists them to the Parquet bar store.
type AlpacaFetcher struct {
	client    *marketdata.Client
	store     store.BarStore
	market    string
	batchSize int
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewAlpacaFetcher builds a fetcher for the given market ("us" or "crypto").
// batchSize caps symbols per API call; ratePerMinute throttles the calls.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string, s store.BarStore, market string, batchSize, ratePerMinute int) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if batchSize < 1 {
		batchSize = 200
	}
	if ratePerMinute < 1 {
		ratePerMinute = 200
	}

	return &AlpacaFetcher{
		client:    marketdata.NewClient(opts),
		store:     s,
		market:    market,
		batchSize: batchSize,
		limiter:   util.NewRateLimiter(ratePerMinute),
		log:       slog.Default().With("fetcher", "alpaca-daily"),
	}
}

// Name returns the fetcher identifier.
func (f *AlpacaFetcher) Name() string { return "alpaca-daily" }

// Run downloads daily bars for the symbols in batches and writes each batch
// to the store. A failed batch is retried with backoff before the run fails.
func (f *AlpacaFetcher) Run(ctx context.Context, symbols []string, start, end time.Time) error {
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to fetch")
	}
	if end.Before(start) {
		return fmt.Errorf("end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	runStart := time.Now()
	total := 0

	for i := 0; i < len(symbols); i += f.batchSize {
		batchEnd := min(i+f.batchSize, len(symbols))
		batch := symbols[i:batchEnd]

		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, 2*time.Second, func() error {
			var ferr error
			bars, ferr = f.fetchMultiBars(ctx, batch, start, end)
			return ferr
		})
		if err != nil {
			return fmt.Errorf("fetching batch %v: %w", batch, err)
		}

		if err := f.store.WriteBars(ctx, bars, f.market); err != nil {
			return fmt.Errorf("writing batch %v: %w", batch, err)
		}
		total += len(bars)
		f.log.Info("batch stored", "symbols", len(batch), "bars", len(bars))
	}

	f.log.Info("fetch complete",
		"symbols", len(symbols),
		"bars", total,
		"elapsed", time.Since(runStart).Round(time.Second),
	)
	return nil
}

func (f *AlpacaFetcher) fetchMultiBars(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	multiBars, err := f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			})
		}
	}
	return bars, nil
}
