package backtest

import (
	"math"
	"testing"
)

func TestRollingTrueRangeMean(t *testing.T) {
	series := []float64{1, 2, 4, 4, 7}
	got := RollingTrueRangeMean(series, 2)
	// diffs: 1, 2, 0, 3; head shrinks to the observations available
	want := []float64{0, 1, 1.5, 1, 1.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("atr[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRollingTrueRangeMeanWindowOne(t *testing.T) {
	series := []float64{10, 13, 11}
	got := RollingTrueRangeMean(series, 1)
	want := []float64{0, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("atr[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSimpleMovingAverage(t *testing.T) {
	series := []float64{2, 4, 6, 8}
	got := SimpleMovingAverage(series, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
