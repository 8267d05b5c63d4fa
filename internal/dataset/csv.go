package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/domain"
)

// LoadCSV reads an OHLC candle file into a bar slice. The header row is
// required and matched case-insensitively; recognised columns are
// time/timestamp/date, open, high, low, close, and volume. Timestamps may be
// RFC 3339, "2006-01-02 15:04:05", "2006-01-02", or Unix milliseconds.
func LoadCSV(path, symbol string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	timeCol, ok := firstOf(idx, "time", "timestamp", "date", "open_time")
	if !ok {
		return nil, fmt.Errorf("%s: no time column in header %v", path, header)
	}
	for _, required := range []string{"open", "high", "low", "close"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%s: no %q column in header %v", path, required, header)
		}
	}
	volCol, hasVolume := idx["volume"]

	var bars []domain.Bar
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		line++

		ts, err := parseTimestamp(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		bar := domain.Bar{Symbol: symbol, Timestamp: ts}
		if bar.Open, err = parsePrice(rec[idx["open"]]); err != nil {
			return nil, fmt.Errorf("%s line %d open: %w", path, line, err)
		}
		if bar.High, err = parsePrice(rec[idx["high"]]); err != nil {
			return nil, fmt.Errorf("%s line %d high: %w", path, line, err)
		}
		if bar.Low, err = parsePrice(rec[idx["low"]]); err != nil {
			return nil, fmt.Errorf("%s line %d low: %w", path, line, err)
		}
		if bar.Close, err = parsePrice(rec[idx["close"]]); err != nil {
			return nil, fmt.Errorf("%s line %d close: %w", path, line, err)
		}
		if hasVolume {
			vol, err := strconv.ParseFloat(strings.TrimSpace(rec[volCol]), 64)
			if err == nil && !math.IsNaN(vol) {
				bar.Volume = int64(vol)
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// LoadCSVFrame reads an OHLC candle file directly into a Frame.
func LoadCSVFrame(path, symbol string) (*Frame, error) {
	bars, err := LoadCSV(path, symbol)
	if err != nil {
		return nil, err
	}
	return FromBars(bars)
}

func firstOf(idx map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := idx[name]; ok {
			return i, true
		}
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, field); err == nil {
			return ts.UTC(), nil
		}
	}
	if ms, err := strconv.ParseInt(field, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", field)
}

func parsePrice(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q", field)
	}
	return v, nil
}
