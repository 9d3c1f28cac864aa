package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Source produces one sample per call. Implementations used on the audio
// path must not allocate or block in Next.
type Source interface {
	Next() float64
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() float64

// Next calls f.
func (f SourceFunc) Next() float64 { return f() }

// WhiteNoise draws independent samples uniformly from [-1, 1].
//
// The random generator is owned by the noise source; WhiteNoise is not
// safe for concurrent use.
type WhiteNoise struct {
	rng *rand.Rand
}

// NewWhiteNoise returns a deterministic noise source seeded with seed.
func NewWhiteNoise(seed int64) *WhiteNoise {
	return &WhiteNoise{rng: rand.New(rand.NewSource(seed))}
}

// NewWhiteNoiseFrom wraps an existing generator. A nil rng falls back to
// seed 1.
func NewWhiteNoiseFrom(rng *rand.Rand) *WhiteNoise {
	if rng == nil {
		return NewWhiteNoise(1)
	}

	return &WhiteNoise{rng: rng}
}

// Next returns the next noise sample.
func (w *WhiteNoise) Next() float64 {
	return w.rng.Float64()*2 - 1
}

// Sine is a phase-accumulating sine oscillator.
type Sine struct {
	phase float64
	step  float64
	amp   float64
}

// NewSine returns an oscillator at freqHz for the given sample rate.
func NewSine(freqHz, amplitude, sampleRate float64) (*Sine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", sampleRate)
	}

	return &Sine{step: 2 * math.Pi * freqHz / sampleRate, amp: amplitude}, nil
}

// Next returns the next oscillator sample.
func (s *Sine) Next() float64 {
	y := s.amp * math.Sin(s.phase)

	s.phase += s.step
	if s.phase >= 2*math.Pi {
		s.phase -= 2 * math.Pi
	}

	return y
}

// Render fills dst with consecutive samples from src.
func Render(src Source, dst []float64) {
	for i := range dst {
		dst[i] = src.Next()
	}
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		if av := math.Abs(v); av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
