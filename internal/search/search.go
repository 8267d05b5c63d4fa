// Package search runs the feature-combination sweep: derive the binned
// variants of one indicator, enumerate every non-empty subset of them, and
// evaluate a fresh classifier per subset.
package search

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
	"github.com/m-marqx/Beautiful-Model/internal/evaluate"
	"github.com/m-marqx/Beautiful-Model/internal/features"
	"github.com/m-marqx/Beautiful-Model/internal/model"
)

// variantSuffixes name the three binned variants in enumeration order.
var variantSuffixes = [3]string{"split", "high", "low"}

// Config drives one combination sweep.
type Config struct {
	Indicator features.Indicator
	// Value holds the indicator parameters: one length for RSI, a fast/slow
	// pair for rolling_ratio, empty for wick_proportion.
	Value []int
	// Params carries the split/high/low interval configurations.
	Params features.Params
	// Extra names fixed feature columns appended to every subset.
	Extra []string

	// Algorithm and Model build a fresh estimator per combination.
	Algorithm string
	Model     model.Params

	Validation        evaluate.SplitLocation
	TestSize          float64
	Fee               float64
	DrawdownMinWindow int

	// Store persists each combination's fitted model when set; names derive
	// from the combination key.
	Store *model.Store

	// Progress renders a terminal progress bar over the 7 combinations.
	Progress bool
}

// Run executes the sweep over a clone of the frame; the caller's frame is
// never modified. The result map has exactly one entry per non-empty subset
// of the three variants, keyed "{indicator}{value}_{subset}".
func Run(f *dataset.Frame, cfg Config) (map[string]*evaluate.Report, error) {
	if _, err := features.ParseIndicator(string(cfg.Indicator)); err != nil {
		return nil, err
	}
	if cfg.TestSize == 0 {
		cfg.TestSize = 0.5
	}

	work := f.Clone()
	boundary, err := cfg.Validation.Resolve(work)
	if err != nil {
		return nil, err
	}
	trainEnd := int(float64(boundary) * (1 - cfg.TestSize))

	source, err := work.OHLC("close")
	if err != nil {
		return nil, err
	}
	builder, err := features.NewBuilder(work, source, trainEnd, 0)
	if err != nil {
		return nil, err
	}

	series, err := builder.Indicator(cfg.Indicator, cfg.Value)
	if err != nil {
		return nil, err
	}

	prefix := keyPrefix(cfg.Indicator, cfg.Value)
	bundle, err := builder.BinnedVariants(prefix, series, cfg.Params)
	if err != nil {
		return nil, err
	}
	if err := work.AddColumns(bundle.Cols, bundle.Names); err != nil {
		return nil, err
	}

	combos := Combinations()
	var bar *pb.ProgressBar
	if cfg.Progress {
		bar = pb.StartNew(len(combos))
	}

	log := slog.Default().With("component", "search", "indicator", cfg.Indicator)
	results := make(map[string]*evaluate.Report, len(combos))

	for _, combo := range combos {
		subset := make([]string, len(combo))
		for i, v := range combo {
			subset[i] = prefix + "_" + variantSuffixes[v]
		}
		key := prefix + "_" + comboLabel(combo)

		est, err := model.New(cfg.Algorithm, cfg.Model)
		if err != nil {
			return nil, err
		}

		evalCfg := evaluate.Config{
			Features:          append(subset, cfg.Extra...),
			Estimator:         est,
			Validation:        cfg.Validation,
			TestSize:          cfg.TestSize,
			Fee:               cfg.Fee,
			DrawdownMinWindow: cfg.DrawdownMinWindow,
		}
		if cfg.Store != nil {
			evalCfg.Store = cfg.Store
			evalCfg.ModelName = key
		}

		report, err := evaluate.Run(work, evalCfg)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", key, err)
		}
		results[key] = report

		log.Debug("combination evaluated", "key", key,
			"final_return", report.Series.FinalReturn(),
			"max_drawdown", report.Series.MaxDrawdown())
		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return results, nil
}

// Combinations enumerates every non-empty subset of the three variants in
// power-set order: singles, pairs, then the triple. Always 7 entries.
func Combinations() [][]int {
	var out [][]int
	for size := 1; size <= 3; size++ {
		out = append(out, subsetsOfSize(size)...)
	}
	return out
}

func subsetsOfSize(size int) [][]int {
	var out [][]int
	var walk func(start int, current []int)
	walk = func(start int, current []int) {
		if len(current) == size {
			c := make([]int, size)
			copy(c, current)
			out = append(out, c)
			return
		}
		for i := start; i < 3; i++ {
			walk(i+1, append(current, i))
		}
	}
	walk(0, nil)
	return out
}

// Project narrows a result map to one series per key. Supported columns
// mirror the report fields: Result, TotalReturn, Drawdown, DrawdownDuration,
// Predictions, ExpectedValue.
func Project(reports map[string]*evaluate.Report, column string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(reports))
	for key, r := range reports {
		var series []float64
		switch column {
		case "Result":
			series = r.Series.Result
		case "TotalReturn":
			series = r.Series.TotalReturn
		case "Drawdown":
			series = r.Series.Drawdown
		case "DrawdownDuration":
			series = make([]float64, len(r.Series.DrawdownDuration))
			for i, d := range r.Series.DrawdownDuration {
				series[i] = float64(d)
			}
		case "Predictions":
			series = r.Predictions
		case "ExpectedValue":
			series = r.Stats.ExpectedValue
		default:
			return nil, fmt.Errorf("unknown results column %q", column)
		}
		out[key] = series
	}
	return out, nil
}

// keyPrefix renders "{indicator}{value}", e.g. RSI14 or rolling_ratio5x20.
func keyPrefix(ind features.Indicator, value []int) string {
	parts := make([]string, len(value))
	for i, v := range value {
		parts[i] = strconv.Itoa(v)
	}
	return string(ind) + strings.Join(parts, "x")
}

func comboLabel(combo []int) string {
	parts := make([]string, len(combo))
	for i, v := range combo {
		parts[i] = variantSuffixes[v]
	}
	return strings.Join(parts, "+")
}
