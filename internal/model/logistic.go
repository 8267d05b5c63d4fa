package model

import (
	"math"
	"math/rand"
)

// LogisticRegression is a batch gradient-descent binary classifier. Weights
// are exported for gob.
type LogisticRegression struct {
	LearnRate float64
	Epochs    int
	Seed      int64

	Weights []float64
	Bias    float64
}

var _ Estimator = (*LogisticRegression)(nil)

// NewLogisticRegression builds an unfitted model. learnRate <= 0 defaults to
// 0.1, epochs < 1 to 200.
func NewLogisticRegression(learnRate float64, epochs int, seed int64) *LogisticRegression {
	if learnRate <= 0 {
		learnRate = 0.1
	}
	if epochs < 1 {
		epochs = 200
	}
	return &LogisticRegression{LearnRate: learnRate, Epochs: epochs, Seed: seed}
}

// Fit runs full-batch gradient descent on the NaN-free training rows.
// Training order is fixed, so results are reproducible for a given seed.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	rows, err := validate(X, y)
	if err != nil {
		return err
	}
	width := len(X[rows[0]])

	rng := rand.New(rand.NewSource(m.Seed))
	m.Weights = make([]float64, width)
	for i := range m.Weights {
		m.Weights[i] = (rng.Float64() - 0.5) * 0.01
	}
	m.Bias = 0

	n := float64(len(rows))
	grad := make([]float64, width)
	for epoch := 0; epoch < m.Epochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		biasGrad := 0.0

		for _, r := range rows {
			diff := sigmoid(m.score(X[r])) - y[r]
			for j, v := range X[r] {
				grad[j] += diff * v
			}
			biasGrad += diff
		}

		for j := range m.Weights {
			m.Weights[j] -= m.LearnRate * grad[j] / n
		}
		m.Bias -= m.LearnRate * biasGrad / n
	}
	return nil
}

// Predict returns hard 0/1 labels at the 0.5 probability threshold; rows
// with NaN features yield NaN.
func (m *LogisticRegression) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		if m.Weights == nil || rowHasNaN(row) {
			out[i] = math.NaN()
			continue
		}
		if sigmoid(m.score(row)) >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (m *LogisticRegression) score(row []float64) float64 {
	s := m.Bias
	for j, v := range row {
		s += m.Weights[j] * v
	}
	return s
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
