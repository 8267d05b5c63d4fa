// Package evaluate runs the walk-forward model evaluation: split a labelled
// frame into development and validation segments, fit a classifier on the
// early development rows without shuffling, and score one continuous forward
// series through the return and statistics layers.
package evaluate

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
	"github.com/m-marqx/Beautiful-Model/internal/labels"
	"github.com/m-marqx/Beautiful-Model/internal/model"
	"github.com/m-marqx/Beautiful-Model/internal/returns"
	"github.com/m-marqx/Beautiful-Model/internal/stats"
)

// Config drives one evaluation run.
type Config struct {
	// Features names the frame columns fed to the estimator.
	Features []string
	// Target is the binary label column; defaults to the label builder's
	// Target_1_bin.
	Target string
	// TargetReturn is the realized forward-return column the results are
	// built from; defaults to Target_1.
	TargetReturn string

	Estimator model.Estimator

	// Validation marks the development/validation boundary.
	Validation SplitLocation
	// TestSize is the share of the development segment held out as test,
	// taken from its tail; must lie in (0, 1). Defaults to 0.5.
	TestSize float64

	Fee               float64
	DrawdownMinWindow int

	// Store and ModelName enable the optional persistence side effect. A
	// failed save is logged, never fatal.
	Store     *model.Store
	ModelName string
}

// Report is the immutable output of one evaluation run.
type Report struct {
	// Index covers the scored region: development test rows followed by the
	// validation rows, minus the final row whose label is still unrealized.
	Index       []time.Time
	Predictions []float64
	Target      []float64

	Series  *returns.Series
	Stats   *stats.ExpectedValueTable
	Periods []stats.PeriodStat
	Metrics *stats.ClassifierMetrics

	ValidationStart time.Time
}

// Run fits the estimator on the early development rows and scores the
// concatenation of the development test tail and the validation segment.
func Run(f *dataset.Frame, cfg Config) (*Report, error) {
	if cfg.Estimator == nil {
		return nil, fmt.Errorf("no estimator configured")
	}
	if len(cfg.Features) == 0 {
		return nil, fmt.Errorf("no feature columns configured")
	}
	if cfg.Target == "" {
		cfg.Target = labels.ColTargetBin
	}
	if cfg.TargetReturn == "" {
		cfg.TargetReturn = labels.ColTarget
	}
	if cfg.TestSize == 0 {
		cfg.TestSize = 0.5
	}
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return nil, fmt.Errorf("test size %v outside (0, 1)", cfg.TestSize)
	}

	validationStart, err := cfg.Validation.Resolve(f)
	if err != nil {
		return nil, err
	}

	X, err := featureMatrix(f, cfg.Features)
	if err != nil {
		return nil, err
	}
	y, ok := f.Column(cfg.Target)
	if !ok {
		return nil, fmt.Errorf("target column %q not found (columns: %v)", cfg.Target, f.Columns())
	}
	targetReturn, ok := f.Column(cfg.TargetReturn)
	if !ok {
		return nil, fmt.Errorf("return column %q not found (columns: %v)", cfg.TargetReturn, f.Columns())
	}

	// Train on the head of the development segment, in temporal order.
	// Shuffling here would leak adjacent-bar information into training.
	trainEnd := int(float64(validationStart) * (1 - cfg.TestSize))
	if trainEnd < 1 {
		return nil, fmt.Errorf("test size %v leaves no training rows before boundary %d",
			cfg.TestSize, validationStart)
	}
	if err := cfg.Estimator.Fit(X[:trainEnd], y[:trainEnd]); err != nil {
		return nil, fmt.Errorf("fitting estimator: %w", err)
	}

	if cfg.Store != nil && cfg.ModelName != "" {
		if err := cfg.Store.Save(cfg.ModelName, cfg.Estimator); err != nil {
			slog.Warn("model save failed", "name", cfg.ModelName, "err", err)
		}
	}

	// Score the development test tail plus the validation segment, dropping
	// the final row whose forward label has not realized yet.
	scoreEnd := f.Len() - 1
	if scoreEnd <= trainEnd {
		return nil, fmt.Errorf("no rows to score between train end %d and frame end", trainEnd)
	}

	preds := cfg.Estimator.Predict(X[trainEnd:scoreEnd])
	index := f.Index()[trainEnd:scoreEnd]
	truth := y[trainEnd:scoreEnd]

	// Gross result per bar: realized forward return where the model is in
	// the market. The return column carries ratios around 1; the calculator
	// expects zero-centered results.
	gross := make([]float64, len(preds))
	for i, ret := range targetReturn[trainEnd:scoreEnd] {
		if math.IsNaN(ret) {
			gross[i] = math.NaN()
			continue
		}
		gross[i] = ret - 1
	}

	series, err := returns.Calculate(gross, preds, cfg.Fee, cfg.DrawdownMinWindow)
	if err != nil {
		return nil, fmt.Errorf("calculating returns: %w", err)
	}

	engine, err := stats.New(series.Result, index, stats.Options{TimeSpan: stats.SpanMonthly})
	if err != nil {
		return nil, fmt.Errorf("building statistics: %w", err)
	}

	metrics, err := stats.ModelMetrics(preds, truth)
	if err != nil {
		return nil, fmt.Errorf("computing model metrics: %w", err)
	}

	return &Report{
		Index:           index,
		Predictions:     preds,
		Target:          truth,
		Series:          series,
		Stats:           engine.ExpectedValue(),
		Periods:         engine.PeriodStatistics(),
		Metrics:         metrics,
		ValidationStart: f.Index()[validationStart],
	}, nil
}

// featureMatrix gathers the named columns into row-major form.
func featureMatrix(f *dataset.Frame, names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		vals, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("feature column %q not found (columns: %v)", name, f.Columns())
		}
		cols[i] = vals
	}

	X := make([][]float64, f.Len())
	for r := range X {
		row := make([]float64, len(names))
		for c := range cols {
			row[c] = cols[c][r]
		}
		X[r] = row
	}
	return X, nil
}
