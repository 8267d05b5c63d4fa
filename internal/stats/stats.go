// Package stats computes per-trade and period performance statistics from a
// realized-return series: expected value, win rates, Sharpe and Sortino.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
)

// TimeSpan selects the resampling period for Sharpe/Sortino.
type TimeSpan string

const (
	SpanAnnual  TimeSpan = "A"
	SpanMonthly TimeSpan = "M"
)

// Options configures an Engine.
type Options struct {
	TimeSpan     TimeSpan
	RiskFreeRate float64
	// IsPercent scales results by 100 before the expected-value table is
	// built, for callers whose results are ratios rather than percentages.
	IsPercent bool
}

// Engine holds a cleaned per-trade result series: zero results and NaNs are
// dropped at construction, with their timestamps retained for resampling.
type Engine struct {
	results []float64
	index   []time.Time
	opts    Options
}

// New builds an Engine from a result series and its time index. Zeros and
// NaNs are dropped; both slices must have equal length.
func New(results []float64, index []time.Time, opts Options) (*Engine, error) {
	if len(results) != len(index) {
		return nil, fmt.Errorf("results have %d values, index has %d", len(results), len(index))
	}
	if opts.TimeSpan == "" {
		opts.TimeSpan = SpanAnnual
	}

	e := &Engine{opts: opts}
	for i, v := range results {
		if v == 0 || math.IsNaN(v) {
			continue
		}
		if opts.IsPercent {
			v *= 100
		}
		e.results = append(e.results, v)
		e.index = append(e.index, index[i])
	}
	return e, nil
}

// NewFromFrame builds an Engine from a frame column. With an empty column
// name the conventional "Result" column is required; a frame without one is
// an error so callers cannot silently feed the wrong series.
func NewFromFrame(f *dataset.Frame, column string, opts Options) (*Engine, error) {
	if column == "" {
		column = "Result"
		if _, ok := f.Column(column); !ok {
			return nil, fmt.Errorf("frame has no %q column and no result column was named (columns: %v)",
				column, f.Columns())
		}
	}
	vals, ok := f.Column(column)
	if !ok {
		return nil, fmt.Errorf("result column %q not found (columns: %v)", column, f.Columns())
	}
	return New(vals, f.Index(), opts)
}

// TradeCount returns the number of nonzero trades retained.
func (e *Engine) TradeCount() int { return len(e.results) }

// ---------------------------------------------------------------------------
// Expected value
// ---------------------------------------------------------------------------

// ExpectedValueTable holds the running expected-value decomposition, one row
// per retained trade.
type ExpectedValueTable struct {
	Index         []time.Time
	Result        []float64
	GainCount     []int
	LossCount     []int
	MeanGain      []float64 // expanding mean of gains, forward-filled
	MeanLoss      []float64 // expanding mean of losses, forward-filled
	WinRate       []float64 // NaN until the first trade resolves
	LossRate      []float64
	ExpectedValue []float64
}

// ExpectedValue computes the running expected value of the strategy:
// Mean_Gain*Win_Rate - |Mean_Loss*Loss_Rate|. Rates are NaN until the first
// trade resolves.
func (e *Engine) ExpectedValue() *ExpectedValueTable {
	n := len(e.results)
	t := &ExpectedValueTable{
		Index:         e.index,
		Result:        e.results,
		GainCount:     make([]int, n),
		LossCount:     make([]int, n),
		MeanGain:      make([]float64, n),
		MeanLoss:      make([]float64, n),
		WinRate:       make([]float64, n),
		LossRate:      make([]float64, n),
		ExpectedValue: make([]float64, n),
	}

	gains, losses := 0, 0
	gainSum, lossSum := 0.0, 0.0
	meanGain, meanLoss := math.NaN(), math.NaN()

	for i, v := range e.results {
		if v > 0 {
			gains++
			gainSum += v
			meanGain = gainSum / float64(gains)
		} else if v < 0 {
			losses++
			lossSum += v
			meanLoss = lossSum / float64(losses)
		}

		t.GainCount[i] = gains
		t.LossCount[i] = losses
		t.MeanGain[i] = meanGain
		t.MeanLoss[i] = meanLoss

		total := float64(gains + losses)
		winRate := float64(gains) / total // NaN when total == 0
		lossRate := float64(losses) / total
		t.WinRate[i] = winRate
		t.LossRate[i] = lossRate

		t.ExpectedValue[i] = meanGain*winRate - math.Abs(meanLoss*lossRate)
	}
	return t
}

// ---------------------------------------------------------------------------
// Period statistics
// ---------------------------------------------------------------------------

// PeriodStat holds resampled statistics for one calendar period.
type PeriodStat struct {
	Period        string
	ExpectedValue float64
	Sharpe        float64
	Sortino       float64
}

// PeriodStatistics resamples the result series by the configured time span
// and computes mean expected value, Sharpe, and Sortino per period. Sharpe
// uses the period sample standard deviation; Sortino divides the same excess
// mean by the standard deviation of negative results only, so a period
// without enough losses yields NaN rather than a fabricated value.
func (e *Engine) PeriodStatistics() []PeriodStat {
	ev := e.ExpectedValue()

	type bucket struct {
		results  []float64
		negative []float64
		evSum    float64
		evCount  int
	}
	buckets := make(map[string]*bucket)

	for i, ts := range e.index {
		key := e.periodKey(ts)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.results = append(b.results, e.results[i])
		if e.results[i] < 0 {
			b.negative = append(b.negative, e.results[i])
		}
		if !math.IsNaN(ev.ExpectedValue[i]) {
			b.evSum += ev.ExpectedValue[i]
			b.evCount++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PeriodStat, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		meanExcess := stat.Mean(b.results, nil) - e.opts.RiskFreeRate

		ps := PeriodStat{
			Period:        key,
			ExpectedValue: math.NaN(),
			Sharpe:        meanExcess / stat.StdDev(b.results, nil),
			Sortino:       meanExcess / stat.StdDev(b.negative, nil),
		}
		if b.evCount > 0 {
			ps.ExpectedValue = b.evSum / float64(b.evCount)
		}
		out = append(out, ps)
	}
	return out
}

func (e *Engine) periodKey(ts time.Time) string {
	if e.opts.TimeSpan == SpanMonthly {
		return ts.Format("2006-01")
	}
	return ts.Format("2006")
}
