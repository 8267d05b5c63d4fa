// Package features derives indicator-based model features over a labelled
// frame, binning each continuous series with quantile tables fitted strictly
// on the training window so no validation information leaks into the bins.
package features

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/binning"
	"github.com/m-marqx/Beautiful-Model/internal/dataset"
	"github.com/m-marqx/Beautiful-Model/internal/indicators"
)

// ErrUnknownIndicator is returned for externally-supplied indicator names
// that are not in the supported set.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Indicator enumerates the base indicators the combination search can be
// driven by. Externally-supplied names go through ParseIndicator, which is
// the only place an unknown name can appear.
type Indicator string

const (
	IndicatorRSI            Indicator = "RSI"
	IndicatorRollingRatio   Indicator = "rolling_ratio"
	IndicatorWickProportion Indicator = "wick_proportion"
)

// ParseIndicator validates an externally-supplied indicator name.
func ParseIndicator(name string) (Indicator, error) {
	switch Indicator(name) {
	case IndicatorRSI, IndicatorRollingRatio, IndicatorWickProportion:
		return Indicator(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
}

// Params bundles the three interval configurations used to derive the
// "split", "high", and "low" variants of one indicator. The configs are
// forwarded verbatim to the binner.
type Params struct {
	Split binning.Config
	High  binning.Config
	Low   binning.Config
}

// Bundle is an ordered set of derived feature columns, kept separate from
// the input frame so repeated builds cannot collide; callers merge it with
// Frame.AddColumns.
type Bundle struct {
	Names []string
	Cols  map[string][]float64
}

func newBundle() *Bundle {
	return &Bundle{Cols: make(map[string][]float64)}
}

func (b *Bundle) add(name string, vals []float64) {
	b.Names = append(b.Names, name)
	b.Cols[name] = vals
}

// Merge appends every column of other to b.
func (b *Bundle) Merge(other *Bundle) {
	for _, name := range other.Names {
		b.add(name, other.Cols[name])
	}
}

// Builder computes feature columns over one frame. The train/development
// boundary fixes the window every quantile table is fitted on.
type Builder struct {
	frame    *dataset.Frame
	source   []float64
	trainEnd int
	bins     int
	log      *slog.Logger
}

// NewBuilder creates a Builder over the frame. source is the series the
// base indicators are computed from (usually close); trainEnd is the
// ordinal train/development boundary; bins is the bin count for the named
// feature variants.
func NewBuilder(f *dataset.Frame, source []float64, trainEnd, bins int) (*Builder, error) {
	if trainEnd < 1 || trainEnd > f.Len() {
		return nil, fmt.Errorf("train boundary %d outside frame of %d rows", trainEnd, f.Len())
	}
	if bins < 1 {
		bins = 10
	}
	return &Builder{
		frame:    f,
		source:   source,
		trainEnd: trainEnd,
		bins:     bins,
		log:      slog.Default().With("component", "features"),
	}, nil
}

// TrainEnd returns the train/development boundary the builder fits on.
func (b *Builder) TrainEnd() int { return b.trainEnd }

// ---------------------------------------------------------------------------
// Base indicator series
// ---------------------------------------------------------------------------

// Indicator computes the base indicator series for the combination search.
// params carries the indicator-specific lengths: one value for RSI, a
// fast/slow pair for rolling_ratio, none for wick_proportion.
func (b *Builder) Indicator(ind Indicator, params []int) ([]float64, error) {
	switch ind {
	case IndicatorRSI:
		if len(params) != 1 {
			return nil, fmt.Errorf("RSI takes one length, got %v", params)
		}
		return indicators.RSI(b.source, params[0]), nil

	case IndicatorRollingRatio:
		if len(params) != 2 {
			return nil, fmt.Errorf("rolling_ratio takes a fast/slow pair, got %v", params)
		}
		return indicators.RollingRatio(b.source, params[0], params[1]), nil

	case IndicatorWickProportion:
		open, err := b.frame.OHLC("open")
		if err != nil {
			return nil, err
		}
		high, err := b.frame.OHLC("high")
		if err != nil {
			return nil, err
		}
		low, err := b.frame.OHLC("low")
		if err != nil {
			return nil, err
		}
		close, err := b.frame.OHLC("close")
		if err != nil {
			return nil, err
		}
		return indicators.WickProportion(open, high, low, close), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, ind)
}

// ---------------------------------------------------------------------------
// Binned variants
// ---------------------------------------------------------------------------

// BinnedVariants fits the three interval tables on the training slice of the
// indicator series and labels every bar of the full series with each. The
// returned bundle holds the columns named prefix_split, prefix_high, and
// prefix_low, in that order.
func (b *Builder) BinnedVariants(prefix string, series []float64, p Params) (*Bundle, error) {
	bundle := newBundle()
	for _, variant := range []struct {
		suffix string
		cfg    binning.Config
	}{
		{"split", p.Split},
		{"high", p.High},
		{"low", p.Low},
	} {
		table, err := binning.FitConfig(series, b.trainEnd, variant.cfg)
		if err != nil {
			return nil, fmt.Errorf("fitting %s_%s: %w", prefix, variant.suffix, err)
		}
		bundle.add(prefix+"_"+variant.suffix, table.TransformSeries(series))
	}
	return bundle, nil
}

// ---------------------------------------------------------------------------
// Named features
// ---------------------------------------------------------------------------

// RSIFeature computes RSI over the source and its binned variant, producing
// the RSI and RSI_feat columns.
func (b *Builder) RSIFeature(length int) (*Bundle, error) {
	start := time.Now()

	rsi := indicators.RSI(b.source, length)
	feat, err := b.binNamed("RSI", rsi)
	if err != nil {
		return nil, err
	}

	bundle := newBundle()
	bundle.add("RSI", rsi)
	bundle.add("RSI_feat", feat)
	b.log.Debug("RSI calculated", "length", length, "elapsed", time.Since(start))
	return bundle, nil
}

// SlowStochFeature computes the slow stochastic %K/%D over the named source
// column and their binned variants: stoch_k, stoch_k_feat, stoch_d,
// stoch_d_feat.
func (b *Builder) SlowStochFeature(kLength, kSmoothing, dSmoothing int) (*Bundle, error) {
	start := time.Now()

	high, err := b.frame.OHLC("high")
	if err != nil {
		return nil, err
	}
	low, err := b.frame.OHLC("low")
	if err != nil {
		return nil, err
	}
	close, err := b.frame.OHLC("close")
	if err != nil {
		return nil, err
	}

	k, d := indicators.SlowStoch(high, low, close, kLength, kSmoothing, dSmoothing)

	bundle := newBundle()
	kFeat, err := b.binNamed("stoch_k", k)
	if err != nil {
		return nil, err
	}
	bundle.add("stoch_k", k)
	bundle.add("stoch_k_feat", kFeat)

	dFeat, err := b.binNamed("stoch_d", d)
	if err != nil {
		return nil, err
	}
	bundle.add("stoch_d", d)
	bundle.add("stoch_d_feat", dFeat)

	b.log.Debug("slow stochastic calculated", "elapsed", time.Since(start))
	return bundle, nil
}

// MovingAverages supported by DTWDistanceFeature.
var movingAverages = map[string]func([]float64, int) []float64{
	"sma":  indicators.SMA,
	"ema":  indicators.EMA,
	"rma":  indicators.RMA,
	"dema": indicators.DEMA,
	"tema": indicators.TEMA,
}

var movingAverageOrder = []string{"sma", "ema", "rma", "dema", "tema"}

// DTWDistanceFeature computes the dynamic-time-warping distance between the
// source and each requested moving average ("sma", "ema", "rma", "dema",
// "tema", or "all"), plus a binned variant per distance. Column names follow
// the SMA_DTW / SMA_DTW_feat pattern.
func (b *Builder) DTWDistanceFeature(mas []string, length int) (*Bundle, error) {
	start := time.Now()

	selected := make(map[string]bool)
	for _, name := range mas {
		lower := strings.ToLower(name)
		if lower == "all" {
			for _, known := range movingAverageOrder {
				selected[known] = true
			}
			continue
		}
		if _, ok := movingAverages[lower]; !ok {
			return nil, fmt.Errorf("unknown moving average %q (want sma, ema, rma, dema, tema, or all)", name)
		}
		selected[lower] = true
	}

	bundle := newBundle()
	for _, name := range movingAverageOrder {
		if !selected[name] {
			continue
		}
		ma := movingAverages[name](b.source, length)
		dist := indicators.DTWDistance(b.source, ma)

		col := strings.ToUpper(name) + "_DTW"
		feat, err := b.binNamed(col, dist)
		if err != nil {
			return nil, err
		}
		bundle.add(col, dist)
		bundle.add(col+"_feat", feat)
	}

	b.log.Debug("DTW distances calculated", "averages", mas, "length", length, "elapsed", time.Since(start))
	return bundle, nil
}

// binNamed bins a named feature with the builder's default bin count,
// dropping duplicate quantile edges.
func (b *Builder) binNamed(name string, series []float64) ([]float64, error) {
	table, err := binning.Fit(series, b.trainEnd, b.bins)
	if err != nil {
		return nil, fmt.Errorf("binning %s: %w", name, err)
	}
	return table.TransformSeries(series), nil
}
