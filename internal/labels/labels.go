// Package labels derives forward returns and binary direction targets from
// an OHLC frame.
package labels

import (
	"fmt"
	"math"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
)

// Column names produced by Apply.
const (
	ColReturn    = "Return"
	ColTarget    = "Target_1"
	ColTargetBin = "Target_1_bin"
)

// Apply computes the labelling columns for a forward horizon of length bars
// and adds them to the frame:
//
//	Return       = close[i] / close[i-length]
//	Target_1     = Return shifted back by length (the value realised length
//	               bars in the future)
//	Target_1_bin = 1 when Target_1 > 1, else 0; NaN where Target_1 is NaN
//
// The final length rows carry NaN targets because no future close exists for
// them. No rows are removed.
func Apply(f *dataset.Frame, length int) error {
	if length < 1 {
		return fmt.Errorf("horizon length %d must be >= 1", length)
	}
	if length >= f.Len() {
		return fmt.Errorf("horizon length %d must be smaller than the frame (%d rows)", length, f.Len())
	}

	closes, err := f.OHLC("close")
	if err != nil {
		return err
	}

	n := f.Len()
	ret := dataset.NaNSlice(n)
	target := dataset.NaNSlice(n)
	targetBin := dataset.NaNSlice(n)

	for i := length; i < n; i++ {
		ret[i] = closes[i] / closes[i-length]
	}
	for i := 0; i+length < n; i++ {
		target[i] = ret[i+length]
		if math.IsNaN(target[i]) {
			continue
		}
		if target[i] > 1 {
			targetBin[i] = 1
		} else {
			targetBin[i] = 0
		}
	}

	if err := f.AddColumn(ColReturn, ret); err != nil {
		return err
	}
	if err := f.AddColumn(ColTarget, target); err != nil {
		return err
	}
	return f.AddColumn(ColTargetBin, targetBin)
}
