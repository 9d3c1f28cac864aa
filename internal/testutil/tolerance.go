package testutil

import (
	"math"
	"testing"
)

// Sample is a float sample type.
type Sample interface {
	~float32 | ~float64
}

// RequireSliceNearlyEqual fails t if got and want differ in length or any
// pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t on the first NaN or Inf.
func RequireFinite[S Sample](t *testing.T, data []S) {
	t.Helper()
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails t on the first sample outside [lo, hi] or NaN.
func RequireBounded[S Sample](t *testing.T, data []S, lo, hi float64) {
	t.Helper()
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || f < lo || f > hi {
			t.Fatalf("index %d: value %v outside [%v, %v]", i, v, lo, hi)
		}
	}
}
