package indicators

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	got := SMA(series, 3)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("SMA warmup = %v, want NaNs", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(got[i+2]-w) > 1e-12 {
			t.Errorf("SMA[%d] = %v, want %v", i+2, got[i+2], w)
		}
	}
}

func TestSMASkipsNaNWindows(t *testing.T) {
	series := []float64{1, math.NaN(), 3, 4, 5}
	got := SMA(series, 2)

	if !math.IsNaN(got[1]) || !math.IsNaN(got[2]) {
		t.Errorf("windows containing NaN should be NaN, got %v", got[1:3])
	}
	if math.Abs(got[3]-3.5) > 1e-12 {
		t.Errorf("SMA[3] = %v, want 3.5", got[3])
	}
}

func TestEMAConvergesTowardLevel(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 10
	}
	series[0] = 0 // disturb the seed

	got := EMA(series, 10)
	last := got[len(got)-1]
	if math.Abs(last-10) > 0.1 {
		t.Errorf("EMA should converge to the level, got %v", last)
	}
}

func TestRSIBounds(t *testing.T) {
	// Alternating moves keep RSI strictly inside (0, 100); a monotone
	// rise pins it at 100.
	up := make([]float64, 30)
	for i := range up {
		up[i] = float64(i)
	}
	rsiUp := RSI(up, 14)
	if got := rsiUp[len(rsiUp)-1]; got != 100 {
		t.Errorf("RSI of monotone rise = %v, want 100", got)
	}

	alternating := make([]float64, 40)
	for i := range alternating {
		alternating[i] = float64(i%2) * 2
	}
	rsiAlt := RSI(alternating, 14)
	last := rsiAlt[len(rsiAlt)-1]
	if math.IsNaN(last) || last <= 0 || last >= 100 {
		t.Errorf("RSI of alternating series = %v, want inside (0, 100)", last)
	}

	// Warmup region is NaN.
	if !math.IsNaN(rsiAlt[0]) {
		t.Errorf("RSI[0] = %v, want NaN", rsiAlt[0])
	}
}

func TestSlowStochRange(t *testing.T) {
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 10*math.Sin(float64(i)/3)
		high[i] = base + 1
		low[i] = base - 1
		close[i] = base + math.Cos(float64(i))
	}

	k, d := SlowStoch(high, low, close, 14, 1, 3)
	for i := range k {
		if math.IsNaN(k[i]) {
			continue
		}
		if k[i] < 0 || k[i] > 100 {
			t.Errorf("%%K[%d] = %v, outside [0, 100]", i, k[i])
		}
	}
	// %D lags %K by its smoothing window.
	firstK, firstD := -1, -1
	for i := range k {
		if firstK < 0 && !math.IsNaN(k[i]) {
			firstK = i
		}
		if firstD < 0 && !math.IsNaN(d[i]) {
			firstD = i
		}
	}
	if firstD <= firstK {
		t.Errorf("%%D defined at %d, %%K at %d; want %%D later", firstD, firstK)
	}
}

func TestDEMATEMATrackFasterThanEMA(t *testing.T) {
	// On a steady trend, DEMA and TEMA sit closer to price than plain EMA.
	n := 80
	series := make([]float64, n)
	for i := range series {
		series[i] = float64(i)
	}

	ema := EMA(series, 20)
	dema := DEMA(series, 20)
	tema := TEMA(series, 20)

	last := n - 1
	price := series[last]
	if math.Abs(price-dema[last]) >= math.Abs(price-ema[last]) {
		t.Errorf("DEMA lag %v should be under EMA lag %v", price-dema[last], price-ema[last])
	}
	if math.Abs(price-tema[last]) >= math.Abs(price-dema[last]) {
		t.Errorf("TEMA lag %v should be under DEMA lag %v", price-tema[last], price-dema[last])
	}
}

func TestRollingRatio(t *testing.T) {
	series := []float64{1, 1, 1, 1, 2, 2, 2, 2}
	got := RollingRatio(series, 2, 4)

	// Once the fast window sits fully in the higher regime and the slow
	// window straddles both, the ratio exceeds 1.
	if got[5] <= 1 {
		t.Errorf("RollingRatio[5] = %v, want > 1", got[5])
	}
	if !math.IsNaN(got[2]) {
		t.Errorf("RollingRatio warmup = %v, want NaN", got[2])
	}
}

func TestWickProportion(t *testing.T) {
	open := []float64{10, 10, 10}
	high := []float64{12, 12, 10}
	low := []float64{9, 9, 10}
	close := []float64{11, 9.5, 10}

	got := WickProportion(open, high, low, close)

	// Up candle: upper wick (12-11) over range (12-9).
	if math.Abs(got[0]-1.0/3.0) > 1e-12 {
		t.Errorf("up candle wick = %v, want 1/3", got[0])
	}
	// Down candle: lower wick (9.5-9) over range 3.
	if math.Abs(got[1]-0.5/3.0) > 1e-12 {
		t.Errorf("down candle wick = %v, want 1/6", got[1])
	}
	// Zero-range candle is defined as 0.
	if got[2] != 0 {
		t.Errorf("zero-range candle = %v, want 0", got[2])
	}
}

func TestDTWDistanceIdentical(t *testing.T) {
	series := []float64{1, 2, 3, 2, 1}
	got := DTWDistance(series, series)
	for i, v := range got {
		if v != 0 {
			t.Errorf("DTWDistance to self at %d = %v, want 0", i, v)
		}
	}
}

func TestDTWDistanceAgainstMA(t *testing.T) {
	n := 30
	series := make([]float64, n)
	for i := range series {
		series[i] = 100 + 5*math.Sin(float64(i)/2)
	}
	ma := SMA(series, 5)

	got := DTWDistance(series, ma)

	// Warmup of the MA stays NaN.
	for i := 0; i < 4; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("DTWDistance[%d] = %v, want NaN over MA warmup", i, got[i])
		}
	}
	// Valid region is non-negative and finite.
	for i := 4; i < n; i++ {
		if math.IsNaN(got[i]) || got[i] < 0 {
			t.Errorf("DTWDistance[%d] = %v, want finite >= 0", i, got[i])
		}
	}
}
