// Package domain defines the shared value types passed between the dataset,
// fetch, and store layers.
package domain

import "time"

// Market identifies the venue a bar was sourced from.
type Market string

const (
	MarketUS     Market = "us"
	MarketCrypto Market = "crypto"
)

// Bar is a single OHLCV candle. Timestamps are the bar open time in UTC.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}
