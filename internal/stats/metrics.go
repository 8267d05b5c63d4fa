package stats

import (
	"fmt"
	"math"
)

// ClassifierMetrics holds running confusion-matrix statistics for a binary
// classifier, one row per scored bar. Bars with a NaN truth label (the
// unlabelled frame tail) carry the previous counts forward.
type ClassifierMetrics struct {
	TruePos  []int
	TrueNeg  []int
	FalsePos []int
	FalseNeg []int

	RealSupport0 []int
	RealSupport1 []int
	PredSupport0 []int
	PredSupport1 []int

	RecallPos []float64
	RecallNeg []float64
	Accuracy  []float64
}

// ModelMetrics computes cumulative classification metrics from predicted and
// true binary labels.
func ModelMetrics(pred, truth []float64) (*ClassifierMetrics, error) {
	if len(pred) != len(truth) {
		return nil, fmt.Errorf("predictions have %d values, targets have %d", len(pred), len(truth))
	}

	n := len(pred)
	m := &ClassifierMetrics{
		TruePos:      make([]int, n),
		TrueNeg:      make([]int, n),
		FalsePos:     make([]int, n),
		FalseNeg:     make([]int, n),
		RealSupport0: make([]int, n),
		RealSupport1: make([]int, n),
		PredSupport0: make([]int, n),
		PredSupport1: make([]int, n),
		RecallPos:    make([]float64, n),
		RecallNeg:    make([]float64, n),
		Accuracy:     make([]float64, n),
	}

	var tp, tn, fp, fn, real0, real1, pred0, pred1 int
	for i := 0; i < n; i++ {
		if !math.IsNaN(truth[i]) {
			p, y := pred[i] == 1, truth[i] == 1
			switch {
			case p && y:
				tp++
			case !p && !y:
				tn++
			case p && !y:
				fp++
			default:
				fn++
			}
			if y {
				real1++
			} else {
				real0++
			}
			if p {
				pred1++
			} else {
				pred0++
			}
		}

		m.TruePos[i], m.TrueNeg[i] = tp, tn
		m.FalsePos[i], m.FalseNeg[i] = fp, fn
		m.RealSupport0[i], m.RealSupport1[i] = real0, real1
		m.PredSupport0[i], m.PredSupport1[i] = pred0, pred1

		m.RecallPos[i] = float64(tp) / float64(tp+fn)
		m.RecallNeg[i] = float64(tn) / float64(tn+fp)
		m.Accuracy[i] = float64(tp+tn) / float64(tp+tn+fp+fn)
	}
	return m, nil
}

// FinalAccuracy returns the accuracy over the whole scored range, NaN when
// nothing was labelled.
func (m *ClassifierMetrics) FinalAccuracy() float64 {
	if len(m.Accuracy) == 0 {
		return math.NaN()
	}
	return m.Accuracy[len(m.Accuracy)-1]
}
