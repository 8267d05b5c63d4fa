// Package indicators implements the technical-indicator primitives consumed
// by the feature builder: momentum oscillators, moving averages, and candle
// anatomy ratios. All functions are pure: they take aligned series and
// return a new series of the same length, with NaN over warmup regions.
package indicators

import (
	"math"
)

// SMA computes the simple moving average over length bars. The first
// length-1 positions are NaN.
func SMA(series []float64, length int) []float64 {
	n := len(series)
	out := nanSlice(n)
	if length < 1 || length > n {
		return out
	}

	sum := 0.0
	nanCount := 0
	for i := 0; i < n; i++ {
		if math.IsNaN(series[i]) {
			nanCount++
		} else {
			sum += series[i]
		}
		if i >= length {
			if math.IsNaN(series[i-length]) {
				nanCount--
			} else {
				sum -= series[i-length]
			}
		}
		if i >= length-1 && nanCount == 0 {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(length+1),
// seeded with the SMA of the first length bars.
func EMA(series []float64, length int) []float64 {
	return smoothed(series, length, 2/(float64(length)+1))
}

// RMA computes Wilder's smoothed moving average (alpha = 1/length), the
// smoothing used inside RSI.
func RMA(series []float64, length int) []float64 {
	return smoothed(series, length, 1/float64(length))
}

// DEMA computes the double exponential moving average 2*EMA - EMA(EMA).
func DEMA(series []float64, length int) []float64 {
	e1 := EMA(series, length)
	e2 := EMA(e1, length)
	out := nanSlice(len(series))
	for i := range out {
		out[i] = 2*e1[i] - e2[i]
	}
	return out
}

// TEMA computes the triple exponential moving average
// 3*EMA - 3*EMA(EMA) + EMA(EMA(EMA)).
func TEMA(series []float64, length int) []float64 {
	e1 := EMA(series, length)
	e2 := EMA(e1, length)
	e3 := EMA(e2, length)
	out := nanSlice(len(series))
	for i := range out {
		out[i] = 3*e1[i] - 3*e2[i] + e3[i]
	}
	return out
}

// RSI computes the Relative Strength Index over length bars using Wilder
// smoothing of gains and losses.
func RSI(series []float64, length int) []float64 {
	n := len(series)
	out := nanSlice(n)
	if length < 1 || n < 2 {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		change := series[i] - series[i-1]
		if math.IsNaN(change) {
			gains[i], losses[i] = math.NaN(), math.NaN()
			continue
		}
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := RMA(gains, length)
	avgLoss := RMA(losses, length)
	for i := 0; i < n; i++ {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// SlowStoch computes the slow stochastic oscillator. Raw %K is the position
// of the close within the rolling high-low range; %K is its SMA over
// kSmoothing bars and %D the SMA of %K over dSmoothing bars.
func SlowStoch(high, low, close []float64, kLength, kSmoothing, dSmoothing int) (k, d []float64) {
	n := len(close)
	raw := nanSlice(n)

	for i := kLength - 1; i < n; i++ {
		hh, ll := math.Inf(-1), math.Inf(1)
		valid := true
		for j := i - kLength + 1; j <= i; j++ {
			if math.IsNaN(high[j]) || math.IsNaN(low[j]) {
				valid = false
				break
			}
			hh = math.Max(hh, high[j])
			ll = math.Min(ll, low[j])
		}
		if !valid || math.IsNaN(close[i]) {
			continue
		}
		if hh == ll {
			raw[i] = 0
			continue
		}
		raw[i] = 100 * (close[i] - ll) / (hh - ll)
	}

	k = SMA(raw, kSmoothing)
	d = SMA(k, dSmoothing)
	return k, d
}

// RollingRatio computes the ratio of a fast rolling mean to a slow rolling
// mean of the same series.
func RollingRatio(series []float64, fast, slow int) []float64 {
	fastMA := SMA(series, fast)
	slowMA := SMA(series, slow)
	out := nanSlice(len(series))
	for i := range out {
		if slowMA[i] == 0 {
			continue
		}
		out[i] = fastMA[i] / slowMA[i]
	}
	return out
}

// WickProportion computes the share of a candle's range taken by its
// counter-trend wick: the upper wick for up candles (close > open), the
// lower wick otherwise. A zero-range candle yields 0, never NaN or Inf.
func WickProportion(open, high, low, close []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		amplitude := high[i] - low[i]
		if amplitude == 0 || math.IsNaN(amplitude) {
			out[i] = 0
			continue
		}
		var wick float64
		if close[i] > open[i] {
			wick = high[i] - close[i]
		} else {
			wick = close[i] - low[i]
		}
		out[i] = wick / amplitude
		if math.IsNaN(out[i]) {
			out[i] = 0
		}
	}
	return out
}

// smoothed computes an exponentially-weighted average seeded with the SMA of
// the first length valid values. Leading NaNs in the input defer the seed.
func smoothed(series []float64, length int, alpha float64) []float64 {
	n := len(series)
	out := nanSlice(n)
	if length < 1 {
		return out
	}

	count := 0
	sum := 0.0
	seeded := false
	value := 0.0

	for i := 0; i < n; i++ {
		v := series[i]
		if math.IsNaN(v) {
			if seeded {
				// Hole after the seed: hold the previous value.
				out[i] = value
			}
			continue
		}
		if !seeded {
			sum += v
			count++
			if count == length {
				value = sum / float64(length)
				seeded = true
				out[i] = value
			}
			continue
		}
		value = alpha*v + (1-alpha)*value
		out[i] = value
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	nan := math.NaN()
	for i := range out {
		out[i] = nan
	}
	return out
}
