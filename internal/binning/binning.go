// Package binning fits quantile interval tables on a training window and
// maps arbitrary values, including values outside the training range, to
// ordinal bin indices.
package binning

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sentinel bound magnitude. The lowest interval's lower edge and the highest
// interval's upper edge are replaced with -+sentinel so the table covers the
// whole real line and out-of-range values still map.
const sentinel = 999999999999

// Interval is one half of the fitted table: values v with
// Lowest <= v <= Highest fall into it.
type Interval struct {
	Lowest  float64
	Highest float64
}

// IntervalTable is an ordered, non-overlapping, exhaustive set of intervals
// fitted on a training window. Intervals are sorted by upper edge; the bin
// index of a value is the position of the first interval containing it.
type IntervalTable struct {
	intervals []Interval
}

// Config selects how the training sample is restricted before the quantile
// fit. The zero Threshold means no restriction. With a threshold set,
// HigherThan keeps only training values above it, otherwise only values
// below it; the fitted table still maps every real value through the
// sentinel edges.
type Config struct {
	Bins       int
	Threshold  float64
	HigherThan bool
}

// Fit computes quantile cut points over series[:boundary] (NaNs dropped) and
// returns the resulting interval table. Duplicate quantile edges collapse
// silently into fewer bins; this is not an error. Fit fails only when the
// training slice holds no usable values or bins < 1.
func Fit(series []float64, boundary, bins int) (*IntervalTable, error) {
	return FitConfig(series, boundary, Config{Bins: bins})
}

// FitConfig is Fit with a threshold-restricted training sample.
func FitConfig(series []float64, boundary int, cfg Config) (*IntervalTable, error) {
	if cfg.Bins < 1 {
		return nil, fmt.Errorf("bins %d must be >= 1", cfg.Bins)
	}
	if boundary < 0 || boundary > len(series) {
		return nil, fmt.Errorf("boundary %d outside series of %d values", boundary, len(series))
	}

	train := make([]float64, 0, boundary)
	for _, v := range series[:boundary] {
		if math.IsNaN(v) {
			continue
		}
		if cfg.Threshold != 0 {
			if cfg.HigherThan && v <= cfg.Threshold {
				continue
			}
			if !cfg.HigherThan && v >= cfg.Threshold {
				continue
			}
		}
		train = append(train, v)
	}
	if len(train) == 0 {
		return nil, fmt.Errorf("no usable training values before boundary %d", boundary)
	}

	sort.Float64s(train)

	// Quantile edges, deduplicated: low-variance windows produce repeated
	// cut points, which collapse into fewer (degenerate) bins.
	edges := make([]float64, 0, cfg.Bins+1)
	for i := 0; i <= cfg.Bins; i++ {
		p := float64(i) / float64(cfg.Bins)
		e := stat.Quantile(p, stat.LinInterp, train, nil)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}

	var intervals []Interval
	if len(edges) == 1 {
		// All training values identical: a single degenerate bin.
		intervals = []Interval{{Lowest: edges[0], Highest: edges[0]}}
	} else {
		intervals = make([]Interval, 0, len(edges)-1)
		for i := 0; i+1 < len(edges); i++ {
			intervals = append(intervals, Interval{Lowest: edges[i], Highest: edges[i+1]})
		}
	}

	intervals[0].Lowest = -sentinel
	intervals[len(intervals)-1].Highest = sentinel

	return &IntervalTable{intervals: intervals}, nil
}

// Len returns the number of bins in the table.
func (t *IntervalTable) Len() int { return len(t.intervals) }

// Intervals returns a copy of the fitted intervals in ascending order.
func (t *IntervalTable) Intervals() []Interval {
	out := make([]Interval, len(t.intervals))
	copy(out, t.intervals)
	return out
}

// Transform returns the 0-based index of the first interval containing v.
// The second return value is false only for NaN inputs, which have no bin.
func (t *IntervalTable) Transform(v float64) (int, bool) {
	if math.IsNaN(v) {
		return 0, false
	}
	for i, iv := range t.intervals {
		if v >= iv.Lowest && v <= iv.Highest {
			return i, true
		}
	}
	// Unreachable once the sentinel edges are in place; guarded anyway so a
	// corrupted table maps extremes to the nearest end instead of panicking.
	if v < t.intervals[0].Lowest {
		return 0, true
	}
	return len(t.intervals) - 1, true
}

// TransformSeries maps a whole series, carrying NaNs through unchanged.
// Bin indices are returned as float64 so the result aligns with frame
// columns.
func (t *IntervalTable) TransformSeries(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		if idx, ok := t.Transform(v); ok {
			out[i] = float64(idx)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
