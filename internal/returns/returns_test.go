package returns

import (
	"math"
	"testing"
)

func TestCalculateFeeAndSentinel(t *testing.T) {
	gross := []float64{0.02, -0.01, 0.5, 1}
	filter := []float64{1, 1, 0, 1}

	s, err := Calculate(gross, filter, 0.001, 1)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// Active bars pay the fee; the inactive bar and the stopped-out bar
	// (|gross| == 1) are zeroed.
	want := []float64{0.019, -0.011, 0, 0}
	for i := range want {
		if math.Abs(s.Result[i]-want[i]) > 1e-12 {
			t.Errorf("Result[%d] = %v, want %v", i, s.Result[i], want[i])
		}
	}
}

func TestCalculateCumulativeAnchor(t *testing.T) {
	gross := []float64{0.1, 0.1, -0.05}
	filter := []float64{1, 1, 1}

	s, err := Calculate(gross, filter, 0, 1)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	want := []float64{1.1, 1.2, 1.15}
	for i := range want {
		if math.Abs(s.TotalReturn[i]-want[i]) > 1e-12 {
			t.Errorf("TotalReturn[%d] = %v, want %v", i, s.TotalReturn[i], want[i])
		}
	}
}

func TestDrawdownNonNegativeAndZeroAtHighs(t *testing.T) {
	gross := []float64{0.1, -0.05, -0.05, 0.2, -0.01}
	filter := []float64{1, 1, 1, 1, 1}

	s, err := Calculate(gross, filter, 0, 1)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	for i, dd := range s.Drawdown {
		if dd < 0 {
			t.Errorf("Drawdown[%d] = %v, negative", i, dd)
		}
	}

	// Bar 0 sets a high, bars 1-2 decline, bar 3 sets a new high.
	if s.Drawdown[0] != 0 {
		t.Errorf("Drawdown[0] = %v, want 0 at first high", s.Drawdown[0])
	}
	if s.Drawdown[1] <= 0 || s.Drawdown[2] <= s.Drawdown[1] {
		t.Errorf("Drawdown[1:3] = %v, want increasing positive decline", s.Drawdown[1:3])
	}
	if s.Drawdown[3] != 0 {
		t.Errorf("Drawdown[3] = %v, want 0 at new high-water mark", s.Drawdown[3])
	}
}

func TestDrawdownDurationRuns(t *testing.T) {
	gross := []float64{0.1, -0.02, -0.02, 0.2, -0.01, -0.01}
	filter := []float64{1, 1, 1, 1, 1, 1}

	s, err := Calculate(gross, filter, 0, 1)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	want := []int{0, 1, 2, 0, 1, 2}
	for i := range want {
		if s.DrawdownDuration[i] != want[i] {
			t.Errorf("DrawdownDuration = %v, want %v", s.DrawdownDuration, want)
			break
		}
	}
}

func TestDrawdownMinWindow(t *testing.T) {
	gross := []float64{-0.1, -0.1, -0.1, 0.05}
	filter := []float64{1, 1, 1, 1}

	// With a window of 3, the first two bars have no high-water mark and
	// therefore no drawdown, however deep the decline.
	s, err := Calculate(gross, filter, 0, 3)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if s.Drawdown[0] != 0 || s.Drawdown[1] != 0 {
		t.Errorf("Drawdown before min window = %v, want zeros", s.Drawdown[:2])
	}
	if !math.IsNaN(s.HighWater[0]) || !math.IsNaN(s.HighWater[1]) {
		t.Errorf("HighWater before min window = %v, want NaNs", s.HighWater[:2])
	}
	if math.IsNaN(s.HighWater[2]) {
		t.Error("HighWater should be defined once the window is reached")
	}
}

func TestCalculateLengthMismatch(t *testing.T) {
	if _, err := Calculate([]float64{1, 2}, []float64{1}, 0, 1); err == nil {
		t.Fatal("Calculate should reject mismatched lengths")
	}
}

func TestSummaryHelpers(t *testing.T) {
	gross := []float64{0.1, -0.05}
	filter := []float64{1, 1}

	s, err := Calculate(gross, filter, 0, 1)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got := s.FinalReturn(); math.Abs(got-1.05) > 1e-12 {
		t.Errorf("FinalReturn = %v, want 1.05", got)
	}
	if got := s.MaxDrawdown(); got <= 0 {
		t.Errorf("MaxDrawdown = %v, want > 0", got)
	}

	empty := &Series{}
	if empty.FinalReturn() != 1 {
		t.Error("FinalReturn of empty series should be 1")
	}
	if empty.MaxDrawdown() != 0 {
		t.Error("MaxDrawdown of empty series should be 0")
	}
}
