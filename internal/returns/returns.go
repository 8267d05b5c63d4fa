// Package returns converts a per-bar gross result series and a trade filter
// into net results, cumulative returns, and running drawdown.
package returns

import (
	"fmt"
	"math"
)

// Series holds the calculator output, aligned bar-for-bar with the input.
type Series struct {
	// Result is the net per-bar result: gross minus fee on active bars,
	// zero on inactive and fully-stopped-out bars.
	Result []float64
	// TotalReturn is the running sum of Result anchored at 1.0.
	TotalReturn []float64
	// HighWater is the expanding maximum of TotalReturn, NaN until the
	// minimum window has been observed.
	HighWater []float64
	// Drawdown is the relative decline from the high-water mark, >= 0,
	// and exactly 0 at each new high.
	Drawdown []float64
	// DrawdownDuration counts consecutive bars of strictly positive
	// drawdown, resetting to 0 whenever drawdown returns to 0.
	DrawdownDuration []int
}

// Calculate computes net results and drawdown for a strategy.
//
// A bar pays the fee when its filter value is nonzero and its gross result
// magnitude is not exactly 1; a magnitude of 1 marks a fully-stopped-out bar
// which is zeroed together with inactive bars. The high-water mark starts
// once minWindow observations exist; drawdown is 0 while it is undefined and
// whenever a new high is set.
func Calculate(gross, filter []float64, fee float64, minWindow int) (*Series, error) {
	if len(gross) != len(filter) {
		return nil, fmt.Errorf("gross has %d bars, filter has %d", len(gross), len(filter))
	}
	if minWindow < 1 {
		minWindow = 1
	}

	n := len(gross)
	out := &Series{
		Result:           make([]float64, n),
		TotalReturn:      make([]float64, n),
		HighWater:        make([]float64, n),
		Drawdown:         make([]float64, n),
		DrawdownDuration: make([]int, n),
	}

	cumulative := 0.0
	highWater := math.NaN()
	duration := 0

	for i := 0; i < n; i++ {
		active := filter[i] != 0 && !math.IsNaN(filter[i])
		stopped := math.Abs(gross[i]) == 1

		if active && !stopped && !math.IsNaN(gross[i]) {
			out.Result[i] = gross[i] - fee
		}

		cumulative += out.Result[i]
		total := cumulative + 1
		out.TotalReturn[i] = total

		newHigh := false
		if i+1 >= minWindow {
			if math.IsNaN(highWater) || total > highWater {
				highWater = total
				newHigh = true
			}
		}
		out.HighWater[i] = highWater

		// Drawdown is zero while the high-water mark is undefined and on
		// the bar that sets a new high.
		if math.IsNaN(highWater) || newHigh {
			out.Drawdown[i] = 0
		} else {
			dd := 1 - total/highWater
			if dd < 0 || math.IsNaN(dd) {
				dd = 0
			}
			out.Drawdown[i] = dd
		}

		if out.Drawdown[i] > 0 {
			duration++
		} else {
			duration = 0
		}
		out.DrawdownDuration[i] = duration
	}

	return out, nil
}

// MaxDrawdown returns the largest drawdown in the series, 0 when empty.
func (s *Series) MaxDrawdown() float64 {
	max := 0.0
	for _, dd := range s.Drawdown {
		if dd > max {
			max = dd
		}
	}
	return max
}

// FinalReturn returns the last cumulative return value, 1 when empty.
func (s *Series) FinalReturn() float64 {
	if len(s.TotalReturn) == 0 {
		return 1
	}
	return s.TotalReturn[len(s.TotalReturn)-1]
}
