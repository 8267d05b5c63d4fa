package model

import (
	"math"
	"sort"
)

// treeNode is one node of a fitted tree. Fields are exported for gob.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Leaf      bool
	Value     float64
}

// DecisionTree is a CART binary classifier split on Gini impurity. Binned
// feature columns give it few candidate thresholds per feature, which keeps
// fitting cheap even inside the combination search loop.
type DecisionTree struct {
	MaxDepth int
	MinLeaf  int
	Root     *treeNode
}

var _ Estimator = (*DecisionTree)(nil)

// NewDecisionTree builds an unfitted tree. maxDepth < 1 defaults to 6,
// minLeaf < 1 to 1.
func NewDecisionTree(maxDepth, minLeaf int) *DecisionTree {
	if maxDepth < 1 {
		maxDepth = 6
	}
	if minLeaf < 1 {
		minLeaf = 1
	}
	return &DecisionTree{MaxDepth: maxDepth, MinLeaf: minLeaf}
}

// Fit grows the tree on the NaN-free training rows.
func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	rows, err := validate(X, y)
	if err != nil {
		return err
	}
	t.Root = t.grow(X, y, rows, 0)
	return nil
}

// Predict classifies each row; rows with NaN features yield NaN.
func (t *DecisionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		if t.Root == nil || rowHasNaN(row) {
			out[i] = math.NaN()
			continue
		}
		node := t.Root
		for !node.Leaf {
			if row[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out[i] = node.Value
	}
	return out
}

func (t *DecisionTree) grow(X [][]float64, y []float64, rows []int, depth int) *treeNode {
	ones := 0
	for _, r := range rows {
		if y[r] == 1 {
			ones++
		}
	}
	if depth >= t.MaxDepth || len(rows) < 2*t.MinLeaf || ones == 0 || ones == len(rows) {
		return leafFor(ones, len(rows))
	}

	feature, threshold, ok := t.bestSplit(X, y, rows)
	if !ok {
		return leafFor(ones, len(rows))
	}

	var left, right []int
	for _, r := range rows {
		if X[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		return leafFor(ones, len(rows))
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, y, left, depth+1),
		Right:     t.grow(X, y, right, depth+1),
	}
}

// bestSplit scans every feature and every midpoint between adjacent distinct
// values for the lowest weighted Gini impurity.
func (t *DecisionTree) bestSplit(X [][]float64, y []float64, rows []int) (feature int, threshold float64, ok bool) {
	bestGini := math.Inf(1)
	width := len(X[rows[0]])

	for f := 0; f < width; f++ {
		values := make([]float64, 0, len(rows))
		for _, r := range rows {
			values = append(values, X[r][f])
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			mid := (values[i] + values[i-1]) / 2
			g := splitGini(X, y, rows, f, mid)
			if g < bestGini {
				bestGini, feature, threshold, ok = g, f, mid, true
			}
		}
	}
	return feature, threshold, ok
}

func splitGini(X [][]float64, y []float64, rows []int, feature int, threshold float64) float64 {
	var lN, lOnes, rN, rOnes int
	for _, r := range rows {
		if X[r][feature] <= threshold {
			lN++
			if y[r] == 1 {
				lOnes++
			}
		} else {
			rN++
			if y[r] == 1 {
				rOnes++
			}
		}
	}
	total := float64(lN + rN)
	return float64(lN)/total*gini(lOnes, lN) + float64(rN)/total*gini(rOnes, rN)
}

func gini(ones, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(ones) / float64(n)
	return 2 * p * (1 - p)
}

func leafFor(ones, n int) *treeNode {
	value := 0.0
	if 2*ones >= n {
		value = 1
	}
	return &treeNode{Leaf: true, Value: value}
}
