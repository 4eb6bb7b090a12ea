package scoring

import (
	"math"
	"testing"
)

func TestMeanEmpty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("mean of empty = %v, want 0", got)
	}
}

func TestStdDevPopulation(t *testing.T) {
	// Population std dev of {2,4,4,4,5,5,7,9} is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("std dev = %v, want 2", got)
	}
}

func TestStdDevConstantSeries(t *testing.T) {
	if got := StdDev([]float64{5, 5, 5}); got != 0 {
		t.Fatalf("std dev of constant series = %v, want 0", got)
	}
}

func TestZScoreDegenerateWindow(t *testing.T) {
	if got := ZScore(10, nil); got != 0 {
		t.Fatalf("z-score on empty window = %v, want 0", got)
	}
	if got := ZScore(10, []float64{3, 3, 3}); got != 0 {
		t.Fatalf("z-score on zero-deviation window = %v, want 0", got)
	}
}

func TestZScore(t *testing.T) {
	window := []float64{1, 2, 3, 4, 5} // mean 3, population std dev sqrt(2)
	got := ZScore(5, window)
	want := 2 / math.Sqrt2
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("z-score = %v, want %v", got, want)
	}
}
