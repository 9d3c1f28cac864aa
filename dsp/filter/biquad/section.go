package biquad

import "github.com/cwbudde/algo-synth/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
//
// A Coefficients value is immutable by convention: designers return a
// fresh value and callers replace it wholesale.
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Section is the delay line of one biquad: the two most recent input
// samples and the two most recent output samples. The zero value is the
// quiescent state.
//
// A Section is not safe for concurrent use; it belongs to the single
// goroutine producing samples.
type Section struct {
	x1, x2 float64 // x[n-1], x[n-2]
	y1, y2 float64 // y[n-1], y[n-2]
}

// NewSection returns a Section with zero state.
func NewSection() *Section {
	return &Section{}
}

// Process filters one input sample with c and returns the output.
//
// The output is computed from the pre-shift history:
//
//	ff = B0*x + B1*x[n-1] + B2*x[n-2]
//	fb = A1*y[n-1] + A2*y[n-2]
//	y  = ff - fb
//
// and only then are both histories shifted by one sample. The stored
// output history is flushed to zero once it decays below the denormal
// range.
func (s *Section) Process(x float64, c Coefficients) float64 {
	ff := c.B0*x + c.B1*s.x1 + c.B2*s.x2
	fb := c.A1*s.y1 + c.A2*s.y2
	y := ff - fb

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = core.FlushDenormals(y)

	return y
}

// ProcessBlock filters a block of samples in-place with c. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64, c Coefficients) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2 := s.x1, s.x2
	y1, y2 := s.y1, s.y2

	for i, x := range buf {
		y := b0*x + b1*x1 + b2*x2 - (a1*y1 + a2*y2)
		x2, x1 = x1, x
		y2, y1 = y1, core.FlushDenormals(y)
		buf[i] = y
	}

	s.x1, s.x2 = x1, x2
	s.y1, s.y2 = y1, y2
}

// ProcessBlockTo filters src into dst with c. Both slices must have the
// same length. Zero-alloc.
func (s *Section) ProcessBlockTo(dst, src []float64, c Coefficients) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = s.Process(x, c)
	}
}

// Reset returns the delay line to the quiescent state.
func (s *Section) Reset() {
	*s = Section{}
}

// State returns the current delay-line state [x1, x2, y1, y2].
func (s *Section) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [4]float64) {
	s.x1, s.x2 = state[0], state[1]
	s.y1, s.y2 = state[2], state[3]
}
