package fetch

import (
	"context"
	"testing"
	"time"
)

func TestAlpacaFetcherName(t *testing.T) {
	f := NewAlpacaFetcher("key", "secret", "https://data.alpaca.markets",
		nil, "crypto", 0, 0)
	if got := f.Name(); got != "alpaca-daily" {
		t.Errorf("Name() = %q, want %q", got, "alpaca-daily")
	}
	if f.batchSize != 200 {
		t.Errorf("default batch size = %d, want 200", f.batchSize)
	}
}

func TestAlpacaFetcherRunValidation(t *testing.T) {
	f := NewAlpacaFetcher("key", "secret", "", nil, "us", 100, 100)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := f.Run(ctx, nil, start, start.AddDate(0, 1, 0)); err == nil {
		t.Error("empty symbol list should fail")
	}
	if err := f.Run(ctx, []string{"BTCUSD"}, start, start.AddDate(0, -1, 0)); err == nil {
		t.Error("end before start should fail")
	}
}
