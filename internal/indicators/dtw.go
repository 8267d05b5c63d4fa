package indicators

import (
	"math"
)

// DTWDistance aligns a source series against a smoothed target (typically a
// moving average of the source) with dynamic time warping and returns, for
// each source bar, the absolute distance to its matched target value.
// Positions where either series is NaN (warmup regions) stay NaN.
func DTWDistance(source, target []float64) []float64 {
	n := len(source)
	out := nanSlice(n)
	if len(target) != n {
		return out
	}

	// Trim to the region where both series are defined; DTW itself cannot
	// handle holes.
	start, end := validRange(source, target)
	if start >= end {
		return out
	}
	a := source[start:end]
	b := target[start:end]
	m := len(a)

	// Accumulated-cost matrix over the valid region.
	cost := make([][]float64, m)
	for i := range cost {
		cost[i] = make([]float64, m)
	}
	cost[0][0] = math.Abs(a[0] - b[0])
	for i := 1; i < m; i++ {
		cost[i][0] = cost[i-1][0] + math.Abs(a[i]-b[0])
		cost[0][i] = cost[0][i-1] + math.Abs(a[0]-b[i])
	}
	for i := 1; i < m; i++ {
		for j := 1; j < m; j++ {
			best := cost[i-1][j-1]
			if cost[i-1][j] < best {
				best = cost[i-1][j]
			}
			if cost[i][j-1] < best {
				best = cost[i][j-1]
			}
			cost[i][j] = math.Abs(a[i]-b[j]) + best
		}
	}

	// Backtrack the optimal path, recording the matched target value for
	// each source index. When a source bar matches several target bars the
	// last one on the path wins.
	i, j := m-1, m-1
	for {
		out[start+i] = math.Abs(a[i] - b[j])
		if i == 0 && j == 0 {
			break
		}
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := cost[i-1][j-1], cost[i-1][j], cost[i][j-1]
			if diag <= up && diag <= left {
				i, j = i-1, j-1
			} else if up <= left {
				i--
			} else {
				j--
			}
		}
	}
	return out
}

// validRange returns the largest [start, end) where both series are NaN-free
// from start onward.
func validRange(a, b []float64) (int, int) {
	n := len(a)
	start := 0
	for start < n && (math.IsNaN(a[start]) || math.IsNaN(b[start])) {
		start++
	}
	end := start
	for end < n && !math.IsNaN(a[end]) && !math.IsNaN(b[end]) {
		end++
	}
	return start, end
}
