package evaluate

import (
	"errors"
	"fmt"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
)

// ErrBadSplit is returned for split locations that cannot be resolved
// against the frame.
var ErrBadSplit = errors.New("invalid split location")

type splitKind int

const (
	splitUnset splitKind = iota
	splitFraction
	splitIndex
	splitLabel
)

// SplitLocation designates the development/validation boundary as either a
// fraction of the frame, an ordinal row index, or a timestamp label.
type SplitLocation struct {
	kind     splitKind
	fraction float64
	index    int
	label    time.Time
}

// Fraction places the boundary at int(f * rows); f must lie in (0, 1).
func Fraction(f float64) SplitLocation {
	return SplitLocation{kind: splitFraction, fraction: f}
}

// Index places the boundary at an ordinal row position.
func Index(i int) SplitLocation {
	return SplitLocation{kind: splitIndex, index: i}
}

// Label places the boundary at the row carrying the given timestamp.
func Label(t time.Time) SplitLocation {
	return SplitLocation{kind: splitLabel, label: t}
}

// Resolve turns the location into a row index over the frame. Rows before
// the index are development, rows at or after it validation. Every failure
// names the offending value.
func (l SplitLocation) Resolve(f *dataset.Frame) (int, error) {
	n := f.Len()
	switch l.kind {
	case splitFraction:
		if l.fraction <= 0 || l.fraction >= 1 {
			return 0, fmt.Errorf("%w: fraction %v outside (0, 1)", ErrBadSplit, l.fraction)
		}
		return int(l.fraction * float64(n)), nil

	case splitIndex:
		if l.index < 1 || l.index >= n {
			return 0, fmt.Errorf("%w: index %d outside [1, %d)", ErrBadSplit, l.index, n)
		}
		return l.index, nil

	case splitLabel:
		pos := f.IndexAtOrAfter(l.label)
		if pos >= n || !f.Index()[pos].Equal(l.label) {
			return 0, fmt.Errorf("%w: label %s not in the frame index",
				ErrBadSplit, l.label.Format(time.RFC3339))
		}
		if pos == 0 {
			return 0, fmt.Errorf("%w: label %s leaves no development rows",
				ErrBadSplit, l.label.Format(time.RFC3339))
		}
		return pos, nil
	}
	return 0, fmt.Errorf("%w: no location set", ErrBadSplit)
}
