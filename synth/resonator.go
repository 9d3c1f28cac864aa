package synth

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/signal"
)

// DefaultSeed seeds the noise source of a Resonator created without one.
const DefaultSeed = 1

// snapshot pairs a parameter set with the coefficients synthesized from
// it. It is never modified after being published.
type snapshot struct {
	params Params
	coeffs biquad.Coefficients
}

// Resonator is a noise source filtered by a single biquad section.
//
// Setters may be called from one control goroutine while another goroutine
// calls Generate. Generate, GenerateBlock and Reset belong to the producer
// goroutine only.
type Resonator struct {
	mu      sync.Mutex // serializes setters
	current atomic.Pointer[snapshot]

	filter biquad.Section
	src    signal.Source
}

// NewResonator returns a resonator with DefaultParams and a quiescent
// filter. A nil src is replaced by white noise seeded with DefaultSeed.
func NewResonator(src signal.Source) *Resonator {
	if src == nil {
		src = signal.NewWhiteNoise(DefaultSeed)
	}

	p := DefaultParams()
	c, err := p.Coefficients()
	if err != nil {
		panic(err) // defaults are always valid
	}

	r := &Resonator{src: src}
	r.current.Store(&snapshot{params: p, coeffs: c})

	return r
}

// Params returns the active parameter set.
func (r *Resonator) Params() Params {
	return r.current.Load().params
}

// Coefficients returns the active normalized coefficients.
func (r *Resonator) Coefficients() biquad.Coefficients {
	return r.current.Load().coeffs
}

// SetCutoff sets the filter cutoff in Hz. Zero and exactly Nyquist are
// accepted.
func (r *Resonator) SetCutoff(hz float64) error {
	return r.update(func(p *Params) error {
		if err := checkCutoff(hz, p.Nyquist()); err != nil {
			return err
		}
		p.Cutoff = hz

		return nil
	})
}

// SetQ sets the quality factor, 0 < q < MaxQ.
func (r *Resonator) SetQ(q float64) error {
	return r.update(func(p *Params) error {
		if err := checkQ(q); err != nil {
			return err
		}
		p.Q = q

		return nil
	})
}

// SetSampleRate changes the sample rate. A rate whose Nyquist frequency
// lies below the current cutoff is rejected with
// ErrInvalidParameterCombination.
func (r *Resonator) SetSampleRate(rate int) error {
	return r.update(func(p *Params) error {
		if err := checkSampleRate(rate); err != nil {
			return err
		}
		if nyquist := float64(rate) / 2; p.Cutoff > nyquist {
			return fmt.Errorf("%w: cutoff %v Hz above Nyquist %v Hz of rate %d",
				ErrInvalidParameterCombination, p.Cutoff, nyquist, rate)
		}
		p.SampleRate = rate

		return nil
	})
}

// SetFilterType switches the filter response. The delay line is kept.
func (r *Resonator) SetFilterType(t design.Type) error {
	return r.update(func(p *Params) error {
		if err := checkType(t); err != nil {
			return err
		}
		p.Type = t

		return nil
	})
}

// update applies fn to a copy of the active parameters and publishes the
// result with fresh coefficients. Nothing is published if fn or synthesis
// fails.
func (r *Resonator) update(fn func(p *Params) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.current.Load().params
	if err := fn(&p); err != nil {
		return err
	}

	c, err := p.Coefficients()
	if err != nil {
		return err
	}

	r.current.Store(&snapshot{params: p, coeffs: c})

	return nil
}

// Generate draws one noise sample, filters it and returns the filtered
// sample. Resonant settings can exceed [-1, 1]; the Engine bounds its
// output after gain. Generate does not allocate, lock or fail.
func (r *Resonator) Generate() float64 {
	s := r.current.Load()

	return r.filter.Process(r.src.Next(), s.coeffs)
}

// GenerateBlock fills dst with consecutive Generate outputs. The
// coefficients are read once per block.
func (r *Resonator) GenerateBlock(dst []float64) {
	c := r.current.Load().coeffs
	for i := range dst {
		dst[i] = r.src.Next()
	}
	r.filter.ProcessBlock(dst, c)
}

// Reset clears the filter delay line.
func (r *Resonator) Reset() {
	r.filter.Reset()
}
