// Package model implements the classifiers the evaluation layer fits on
// binned feature matrices, plus on-disk persistence for fitted estimators.
package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotFitted is returned by Predict on an estimator that was never fitted.
var ErrNotFitted = errors.New("estimator not fitted")

// Estimator is a binary classifier over float64 feature rows. Labels are 0
// or 1. Rows containing NaN features predict NaN, so warmup bars propagate
// instead of silently classifying on garbage.
type Estimator interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Params holds the hyperparameters shared by the supported algorithms.
// Fields that do not apply to an algorithm are ignored by it.
type Params struct {
	MaxDepth  int
	MinLeaf   int
	LearnRate float64
	Epochs    int
	Seed      int64
}

// New builds an estimator by algorithm name: "tree" or "logistic".
func New(algorithm string, p Params) (Estimator, error) {
	switch algorithm {
	case "tree":
		return NewDecisionTree(p.MaxDepth, p.MinLeaf), nil
	case "logistic":
		return NewLogisticRegression(p.LearnRate, p.Epochs, p.Seed), nil
	}
	return nil, fmt.Errorf("unknown algorithm %q (want tree or logistic)", algorithm)
}

// validate checks the common Fit preconditions and returns the rows usable
// for training: every row with a finite label and no NaN feature.
func validate(X [][]float64, y []float64) ([]int, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows, labels have %d", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, errors.New("empty training set")
	}
	width := len(X[0])
	if width == 0 {
		return nil, errors.New("training rows have no features")
	}

	var rows []int
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		if math.IsNaN(y[i]) {
			continue
		}
		ok := true
		for _, v := range row {
			if math.IsNaN(v) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, errors.New("no finite training rows")
	}
	return rows, nil
}

func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
