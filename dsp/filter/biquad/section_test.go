package biquad

import (
	"math"
	"testing"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// passthrough returns coefficients for a unity gain passthrough (B0=1, all else 0).
func passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// testCoeffs is a stable lowpass-like biquad with hand-traceable values.
var testCoeffs = Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

func TestNewSection_Quiescent(t *testing.T) {
	s := NewSection()
	if st := s.State(); st != [4]float64{} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestProcess_Passthrough(t *testing.T) {
	var s Section
	input := []float64{1, 0, -1, 0.5, 0.25}
	for i, x := range input {
		y := s.Process(x, passthrough())
		if !almostEqual(y, x, eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcess_HandTraced(t *testing.T) {
	// x = [1, 0, 0, 0]
	//
	// n=0: ff = 0.25*1                        = 0.25
	//      fb = 0                             -> y = 0.25
	// n=1: ff = 0.5*1                         = 0.5
	//      fb = -0.2*0.25                     = -0.05 -> y = 0.55
	// n=2: ff = 0.25*1                        = 0.25
	//      fb = -0.2*0.55 + 0.04*0.25         = -0.1  -> y = 0.35
	// n=3: ff = 0
	//      fb = -0.2*0.35 + 0.04*0.55         = -0.048 -> y = 0.048
	var s Section

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		y := s.Process(x, testCoeffs)
		if !almostEqual(y, w, eps) {
			t.Errorf("sample %d: got %.15f, want %.15f", i, y, w)
		}
	}
}

func TestProcess_ShiftsHistory(t *testing.T) {
	var s Section

	y0 := s.Process(0.5, testCoeffs)
	if st := s.State(); st != [4]float64{0.5, 0, y0, 0} {
		t.Fatalf("after first call: state=%v", st)
	}

	y1 := s.Process(-0.25, testCoeffs)
	if st := s.State(); st != [4]float64{-0.25, 0.5, y1, y0} {
		t.Fatalf("after second call: state=%v", st)
	}

	// A discarded output still advances the history.
	_ = s.Process(0.75, testCoeffs)
	if st := s.State(); st[0] != 0.75 || st[1] != -0.25 || st[3] != y1 {
		t.Fatalf("after third call: state=%v", st)
	}
}

func TestProcess_ZeroInputFromRestIsZero(t *testing.T) {
	c := Coefficients{B0: 0.99, B1: -1.98, B2: 0.99, A1: -1.73, A2: 0.75}
	var s Section
	for i := range 16 {
		if y := s.Process(0, c); y != 0 {
			t.Fatalf("sample %d: got %v, want 0", i, y)
		}
	}
}

func TestProcess_CoefficientSwapKeepsState(t *testing.T) {
	var s Section
	s.Process(1, testCoeffs)
	s.Process(0.5, testCoeffs)
	before := s.State()

	other := Coefficients{B0: 1, A1: 0.5}
	y := s.Process(0, other)

	// Only B0*x and A1*y1 contribute with the new set.
	want := -0.5 * before[2]
	if !almostEqual(y, want, eps) {
		t.Fatalf("got %v, want %v", y, want)
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	var s1 Section
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	ref := make([]float64, len(input))
	for i, x := range input {
		ref[i] = s1.Process(x, testCoeffs)
	}

	var s2 Section
	block := make([]float64, len(input))
	copy(block, input)
	s2.ProcessBlock(block, testCoeffs)

	for i := range block {
		if !almostEqual(block[i], ref[i], eps) {
			t.Errorf("sample %d: ProcessBlock=%.15f, Process=%.15f", i, block[i], ref[i])
		}
	}
	if s1.State() != s2.State() {
		t.Fatalf("state mismatch: block=%v sample=%v", s2.State(), s1.State())
	}
}

func TestProcessBlockTo_MatchesSample(t *testing.T) {
	var s1 Section
	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	ref := make([]float64, len(input))
	for i, x := range input {
		ref[i] = s1.Process(x, testCoeffs)
	}

	var s2 Section
	dst := make([]float64, len(input))
	s2.ProcessBlockTo(dst, input, testCoeffs)

	for i := range dst {
		if !almostEqual(dst[i], ref[i], eps) {
			t.Errorf("sample %d: ProcessBlockTo=%.15f, Process=%.15f", i, dst[i], ref[i])
		}
	}

	s2.ProcessBlockTo(nil, nil, testCoeffs)
}

func TestProcessBlock_SplitEqualsWhole(t *testing.T) {
	input := []float64{1, -0.5, 0.3, 0.1, -0.9, 0.4, 0.6, -0.2, 0.05}

	whole := append([]float64(nil), input...)
	var s1 Section
	s1.ProcessBlock(whole, testCoeffs)

	split := append([]float64(nil), input...)
	var s2 Section
	s2.ProcessBlock(split[:4], testCoeffs)
	s2.ProcessBlock(split[4:], testCoeffs)

	for i := range whole {
		if !almostEqual(whole[i], split[i], eps) {
			t.Fatalf("sample %d: whole=%v split=%v", i, whole[i], split[i])
		}
	}
}

func TestProcessBlock_FlushesLikeProcess(t *testing.T) {
	// y[n] = 0.5*y[n-1] decays from a value already below the flush
	// threshold.
	decay := Coefficients{A1: -0.5}
	start := [4]float64{0, 0, 1e-300, 0}

	var s1, s2 Section
	s1.SetState(start)
	s2.SetState(start)

	ref := make([]float64, 6)
	for i := range ref {
		ref[i] = s1.Process(0, decay)
	}

	block := make([]float64, len(ref))
	s2.ProcessBlock(block, decay)

	for i := range block {
		if block[i] != ref[i] {
			t.Fatalf("sample %d: ProcessBlock=%g, Process=%g", i, block[i], ref[i])
		}
	}
	if ref[1] != 0 {
		t.Fatalf("feedback not flushed: second output %g", ref[1])
	}
	if s1.State() != s2.State() {
		t.Fatalf("state mismatch: block=%v sample=%v", s2.State(), s1.State())
	}
}

func TestReset(t *testing.T) {
	var s Section
	s.Process(1, testCoeffs)
	s.Process(0.5, testCoeffs)
	s.Reset()
	if st := s.State(); st != [4]float64{} {
		t.Fatalf("state after Reset: %v", st)
	}
}

func TestStateRoundTrip(t *testing.T) {
	var s Section
	s.Process(1, testCoeffs)
	s.Process(-0.5, testCoeffs)
	saved := s.State()

	next := s.Process(0.25, testCoeffs)

	var other Section
	other.SetState(saved)
	if got := other.Process(0.25, testCoeffs); !almostEqual(got, next, eps) {
		t.Fatalf("restored section output %v, want %v", got, next)
	}
}
