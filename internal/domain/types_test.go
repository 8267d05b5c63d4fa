package domain

import (
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	// Verify Bar can be instantiated with zero values.
	bar := Bar{}
	if bar.Symbol != "" {
		t.Error("expected empty Symbol for zero-value Bar")
	}
	if !bar.Timestamp.IsZero() {
		t.Error("expected zero Timestamp for zero-value Bar")
	}
	if bar.Open != 0 || bar.High != 0 || bar.Low != 0 || bar.Close != 0 {
		t.Error("expected zero OHLC values for zero-value Bar")
	}
	if bar.Volume != 0 || bar.TradeCount != 0 || bar.VWAP != 0 {
		t.Error("expected zero Volume/TradeCount/VWAP for zero-value Bar")
	}

	// Verify market constants are defined correctly.
	if MarketUS != "us" || MarketCrypto != "crypto" {
		t.Error("Market constants have unexpected values")
	}

	// Verify structs can be constructed with real values.
	b := Bar{
		Symbol:    "BTCUSD",
		Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:      42000,
		High:      42500,
		Low:       41800,
		Close:     42300,
		Volume:    1200,
	}
	if b.Close <= b.Low || b.Close > b.High {
		t.Errorf("constructed bar has inconsistent OHLC: %+v", b)
	}
}
