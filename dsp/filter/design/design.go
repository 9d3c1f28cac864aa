package design

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
)

// Prototype holds the cookbook transfer function terms before division
// by A0:
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (A0 + A1*z^-1 + A2*z^-2)
//
// Every cookbook variant shares A0 = 1 + alpha, A1 = -2cos(w0) and
// A2 = 1 - alpha.
type Prototype struct {
	B0, B1, B2 float64
	A0, A1, A2 float64
}

// Normalize divides all terms by A0 and returns runtime coefficients.
func (p Prototype) Normalize() biquad.Coefficients {
	inv := 1 / p.A0

	return biquad.Coefficients{
		B0: p.B0 * inv,
		B1: p.B1 * inv,
		B2: p.B2 * inv,
		A1: p.A1 * inv,
		A2: p.A2 * inv,
	}
}

// Cookbook evaluates the RBJ audio-EQ-cookbook formulas for t:
//
//	w0    = 2*pi*cutoff/sampleRate
//	alpha = sin(w0) / (2*q)
//
// The bandpass variant has a 0 dB peak gain; the bandstop variant is the
// cookbook notch. cutoff may be anywhere in [0, sampleRate/2], both ends
// included. q must be positive.
func Cookbook(t Type, cutoff, q, sampleRate float64) (Prototype, error) {
	if !t.Supported() {
		return Prototype{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	if err := validate(cutoff, q, sampleRate); err != nil {
		return Prototype{}, err
	}

	w0 := 2 * math.Pi * cutoff / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	p := Prototype{
		A0: 1 + alpha,
		A1: -2 * cw,
		A2: 1 - alpha,
	}

	switch t {
	case Lowpass:
		p.B0 = (1 - cw) / 2
		p.B1 = 1 - cw
		p.B2 = p.B0
	case Highpass:
		p.B0 = (1 + cw) / 2
		p.B1 = -(1 + cw)
		p.B2 = p.B0
	case Bandpass:
		p.B0 = alpha
		p.B1 = 0
		p.B2 = -alpha
	case Bandstop:
		p.B0 = 1
		p.B1 = -2 * cw
		p.B2 = 1
	}

	return p, nil
}

// Synthesize designs a biquad of type t and returns coefficients
// normalized so that a0 = 1.
func Synthesize(t Type, cutoff, q, sampleRate float64) (biquad.Coefficients, error) {
	p, err := Cookbook(t, cutoff, q, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}

	return p.Normalize(), nil
}

func validate(cutoff, q, sampleRate float64) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParameters, sampleRate)
	}

	if !core.IsFinite(q) || q <= 0 {
		return fmt.Errorf("%w: q %v must be > 0", ErrInvalidParameters, q)
	}

	if !core.IsFinite(cutoff) || cutoff < 0 || cutoff > sampleRate/2 {
		return fmt.Errorf("%w: cutoff %v outside [0, %v]", ErrInvalidParameters, cutoff, sampleRate/2)
	}

	return nil
}
