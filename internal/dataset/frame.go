// Package dataset provides the time-indexed column frame shared by the
// labelling, feature, and evaluation layers, plus loaders for OHLC data.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/domain"
)

// Frame is an ordered collection of named float64 series sharing one
// strictly-increasing time index. Missing values are NaN. Columns are
// append-only: adding a column under an existing name is an error, which
// guards against silent overwrites when builders are run repeatedly.
type Frame struct {
	index []time.Time
	cols  map[string][]float64
	order []string
}

// New creates an empty Frame over the given time index. The index must be
// strictly increasing.
func New(index []time.Time) (*Frame, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("index not strictly increasing at position %d (%s >= %s)",
				i, index[i-1].Format(time.RFC3339), index[i].Format(time.RFC3339))
		}
	}
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Frame{
		index: idx,
		cols:  make(map[string][]float64),
	}, nil
}

// FromBars builds a Frame with open/high/low/close/volume columns from a
// bar slice. Bars must already be sorted by timestamp.
func FromBars(bars []domain.Bar) (*Frame, error) {
	index := make([]time.Time, len(bars))
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	clos := make([]float64, len(bars))
	volume := make([]float64, len(bars))
	for i, b := range bars {
		index[i] = b.Timestamp
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		clos[i] = b.Close
		volume[i] = float64(b.Volume)
	}

	f, err := New(index)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		name string
		vals []float64
	}{
		{"open", open}, {"high", high}, {"low", low}, {"close", clos}, {"volume", volume},
	} {
		if err := f.AddColumn(col.name, col.vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.index) }

// Index returns the time index. Callers must not modify it.
func (f *Frame) Index() []time.Time { return f.index }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Column returns the series stored under name. The slice is shared, not
// copied; treat it as read-only.
func (f *Frame) Column(name string) ([]float64, bool) {
	vals, ok := f.cols[name]
	return vals, ok
}

// OHLC returns one of the open/high/low/close/volume series, matching the
// column name case-insensitively ("Close" and "close" are equivalent).
func (f *Frame) OHLC(name string) ([]float64, error) {
	if vals, ok := f.cols[name]; ok {
		return vals, nil
	}
	lower := strings.ToLower(name)
	for _, col := range f.order {
		if strings.ToLower(col) == lower {
			return f.cols[col], nil
		}
	}
	return nil, fmt.Errorf("column %q not found (have %v)", name, f.order)
}

// AddColumn appends a named series. It fails if the name already exists or
// the length does not match the index.
func (f *Frame) AddColumn(name string, vals []float64) error {
	if _, exists := f.cols[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(vals) != len(f.index) {
		return fmt.Errorf("column %q has %d values, frame has %d rows", name, len(vals), len(f.index))
	}
	f.cols[name] = vals
	f.order = append(f.order, name)
	return nil
}

// AddColumns appends every series in the bundle, failing on the first
// collision or length mismatch.
func (f *Frame) AddColumns(bundle map[string][]float64, names []string) error {
	for _, name := range names {
		vals, ok := bundle[name]
		if !ok {
			return fmt.Errorf("bundle is missing column %q", name)
		}
		if err := f.AddColumn(name, vals); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		index: make([]time.Time, len(f.index)),
		cols:  make(map[string][]float64, len(f.cols)),
		order: make([]string, len(f.order)),
	}
	copy(out.index, f.index)
	copy(out.order, f.order)
	for name, vals := range f.cols {
		c := make([]float64, len(vals))
		copy(c, vals)
		out.cols[name] = c
	}
	return out
}

// IndexAtOrAfter finds the first row whose timestamp is >= label using
// binary search. Returns Len() when every row is earlier.
func (f *Frame) IndexAtOrAfter(label time.Time) int {
	return sort.Search(len(f.index), func(i int) bool {
		return !f.index[i].Before(label)
	})
}

// NaNSlice returns a new slice of length n filled with NaN.
func NaNSlice(n int) []float64 {
	out := make([]float64, n)
	nan := math.NaN()
	for i := range out {
		out[i] = nan
	}
	return out
}

// DropNaN returns the values of series with NaNs removed, along with the
// original row positions of the survivors.
func DropNaN(series []float64) (vals []float64, rows []int) {
	for i, v := range series {
		if !math.IsNaN(v) {
			vals = append(vals, v)
			rows = append(rows, i)
		}
	}
	return vals, rows
}
