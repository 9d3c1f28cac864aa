package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
)

// Parameter limits and defaults.
const (
	MaxQ          = 20.0
	MaxSampleRate = 196000

	DefaultCutoff     = 1000.0
	DefaultQ          = 1.0
	DefaultSampleRate = 44100
	DefaultType       = design.Bandpass
)

// Params is the full parameter set of a Resonator.
//
// A valid Params satisfies 0 <= Cutoff <= SampleRate/2, 0 < Q < MaxQ,
// 0 < SampleRate < MaxSampleRate and has a supported Type.
type Params struct {
	Cutoff     float64
	Q          float64
	SampleRate int
	Type       design.Type
}

// DefaultParams returns a 1 kHz bandpass at Q 1 and 44.1 kHz.
func DefaultParams() Params {
	return Params{
		Cutoff:     DefaultCutoff,
		Q:          DefaultQ,
		SampleRate: DefaultSampleRate,
		Type:       DefaultType,
	}
}

// Nyquist returns half the sample rate.
func (p Params) Nyquist() float64 {
	return float64(p.SampleRate) / 2
}

// Validate checks every invariant and returns the first violation.
func (p Params) Validate() error {
	if err := checkSampleRate(p.SampleRate); err != nil {
		return err
	}
	if err := checkQ(p.Q); err != nil {
		return err
	}
	if err := checkCutoff(p.Cutoff, p.Nyquist()); err != nil {
		return err
	}

	return checkType(p.Type)
}

// Coefficients synthesizes the normalized biquad for p.
func (p Params) Coefficients() (biquad.Coefficients, error) {
	if err := p.Validate(); err != nil {
		return biquad.Coefficients{}, err
	}

	c, err := design.Synthesize(p.Type, p.Cutoff, p.Q, float64(p.SampleRate))

	return c, designError(err)
}

func checkCutoff(hz, nyquist float64) error {
	if math.IsNaN(hz) || hz < 0 || hz > nyquist {
		return fmt.Errorf("%w: cutoff %v Hz outside [0, %v]", ErrOutOfRange, hz, nyquist)
	}

	return nil
}

// q == 0 divides by zero in the designer and is reported as a
// combination error rather than a range error.
func checkQ(q float64) error {
	switch {
	case q == 0:
		return fmt.Errorf("%w: q must be > 0", ErrInvalidParameterCombination)
	case math.IsNaN(q) || q < 0 || q >= MaxQ:
		return fmt.Errorf("%w: q %v outside (0, %v)", ErrOutOfRange, q, MaxQ)
	}

	return nil
}

func checkSampleRate(rate int) error {
	if rate <= 0 || rate >= MaxSampleRate {
		return fmt.Errorf("%w: sample rate %d outside (0, %d)", ErrOutOfRange, rate, MaxSampleRate)
	}

	return nil
}

func checkType(t design.Type) error {
	if !t.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFilterType, t)
	}

	return nil
}
