package evaluate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/m-marqx/Beautiful-Model/internal/dataset"
	"github.com/m-marqx/Beautiful-Model/internal/labels"
	"github.com/m-marqx/Beautiful-Model/internal/model"
)

// patternFrame builds a labelled frame whose next-bar direction is fully
// determined by the "signal" feature: even bars rise, odd bars fall.
func patternFrame(t *testing.T, n int) *dataset.Frame {
	t.Helper()

	index := make([]time.Time, n)
	close := make([]float64, n)
	signal := make([]float64, n)
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	price := 100.0
	for i := 0; i < n; i++ {
		index[i] = start.AddDate(0, 0, i)
		close[i] = price
		if i%2 == 0 {
			signal[i] = 1
			price *= 1.05
		} else {
			price *= 0.97
		}
	}

	f, err := dataset.New(index)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	if err := f.AddColumn("close", close); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := f.AddColumn("signal", signal); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := labels.Apply(f, 1); err != nil {
		t.Fatalf("labels.Apply: %v", err)
	}
	return f
}

func TestSplitLocationFraction(t *testing.T) {
	f := patternFrame(t, 100)

	idx, err := Fraction(0.7).Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if idx != 70 {
		t.Errorf("Fraction(0.7) over 100 rows = %d, want 70", idx)
	}

	for _, bad := range []float64{0, 1, -0.3, 1.2} {
		if _, err := Fraction(bad).Resolve(f); !errors.Is(err, ErrBadSplit) {
			t.Errorf("Fraction(%v) = %v, want ErrBadSplit", bad, err)
		}
	}
}

func TestSplitLocationIndexAndLabel(t *testing.T) {
	f := patternFrame(t, 50)

	if idx, err := Index(30).Resolve(f); err != nil || idx != 30 {
		t.Errorf("Index(30) = %d, %v", idx, err)
	}
	if _, err := Index(0).Resolve(f); !errors.Is(err, ErrBadSplit) {
		t.Error("Index(0) should fail")
	}
	if _, err := Index(50).Resolve(f); !errors.Is(err, ErrBadSplit) {
		t.Error("Index past the frame should fail")
	}

	label := f.Index()[20]
	if idx, err := Label(label).Resolve(f); err != nil || idx != 20 {
		t.Errorf("Label(%s) = %d, %v", label, idx, err)
	}
	missing := label.Add(3 * time.Hour)
	if _, err := Label(missing).Resolve(f); !errors.Is(err, ErrBadSplit) {
		t.Error("label between rows should fail")
	}

	var unset SplitLocation
	if _, err := unset.Resolve(f); !errors.Is(err, ErrBadSplit) {
		t.Error("zero-value location should fail")
	}
}

func TestRunLearnsSeparablePattern(t *testing.T) {
	f := patternFrame(t, 200)

	report, err := Run(f, Config{
		Features:          []string{"signal"},
		Estimator:         model.NewDecisionTree(3, 1),
		Validation:        Fraction(0.7),
		TestSize:          0.5,
		Fee:               0.001,
		DrawdownMinWindow: 5,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Scored region: from the train end (0.7*200*0.5 = 70) to the final
	// unrealized row.
	if len(report.Index) != 200-1-70 {
		t.Errorf("scored %d rows, want %d", len(report.Index), 200-1-70)
	}
	if !report.Index[0].Equal(f.Index()[70]) {
		t.Errorf("scoring starts at %s, want %s", report.Index[0], f.Index()[70])
	}
	if !report.ValidationStart.Equal(f.Index()[140]) {
		t.Errorf("ValidationStart = %s, want %s", report.ValidationStart, f.Index()[140])
	}

	// Training rows all precede scored rows.
	if !f.Index()[69].Before(report.Index[0]) {
		t.Error("last training bar should precede the first scored bar")
	}

	if acc := report.Metrics.FinalAccuracy(); acc < 0.95 {
		t.Errorf("accuracy = %v, want >= 0.95 on a separable pattern", acc)
	}

	// The model only trades the rising bars, so the strategy compounds.
	if report.Series.FinalReturn() <= 1 {
		t.Errorf("final return = %v, want > 1", report.Series.FinalReturn())
	}
	if report.Stats == nil || len(report.Stats.Result) == 0 {
		t.Fatal("expected-value table missing")
	}
}

func TestRunTrainPrecedesTestForAnyFraction(t *testing.T) {
	f := patternFrame(t, 120)
	for _, frac := range []float64{0.2, 0.5, 0.9} {
		report, err := Run(f, Config{
			Features:   []string{"signal"},
			Estimator:  model.NewDecisionTree(3, 1),
			Validation: Fraction(frac),
			TestSize:   0.5,
		})
		if err != nil {
			t.Fatalf("Run(%v): %v", frac, err)
		}
		boundary, _ := Fraction(frac).Resolve(f)
		if !report.Index[0].Before(report.ValidationStart) && boundary > 1 {
			t.Errorf("fraction %v: first scored bar %s not before validation start %s",
				frac, report.Index[0], report.ValidationStart)
		}
		for i := 1; i < len(report.Index); i++ {
			if !report.Index[i].After(report.Index[i-1]) {
				t.Fatalf("fraction %v: scored index not increasing at %d", frac, i)
			}
		}
	}
}

func TestRunConfigErrors(t *testing.T) {
	f := patternFrame(t, 60)

	if _, err := Run(f, Config{Features: []string{"signal"}, Validation: Fraction(0.7)}); err == nil {
		t.Error("missing estimator should fail")
	}
	if _, err := Run(f, Config{Estimator: model.NewDecisionTree(3, 1), Validation: Fraction(0.7)}); err == nil {
		t.Error("missing features should fail")
	}
	if _, err := Run(f, Config{
		Features:   []string{"nope"},
		Estimator:  model.NewDecisionTree(3, 1),
		Validation: Fraction(0.7),
	}); err == nil {
		t.Error("unknown feature column should fail")
	}
	if _, err := Run(f, Config{
		Features:   []string{"signal"},
		Estimator:  model.NewDecisionTree(3, 1),
		Validation: Fraction(0.7),
		TestSize:   1.5,
	}); err == nil {
		t.Error("test size outside (0,1) should fail")
	}
}

func TestRunPersistsModel(t *testing.T) {
	f := patternFrame(t, 150)
	store, err := model.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	_, err = Run(f, Config{
		Features:   []string{"signal"},
		Estimator:  model.NewDecisionTree(3, 1),
		Validation: Fraction(0.7),
		Store:      store,
		ModelName:  "signal_tree",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	loaded, err := store.Load("signal_tree")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pred := loaded.Predict([][]float64{{1}, {0}})
	if math.IsNaN(pred[0]) || math.IsNaN(pred[1]) {
		t.Error("persisted model should predict on clean rows")
	}
}
