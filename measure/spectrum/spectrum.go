package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-synth/dsp/core"
)

const (
	defaultFFTSize = 4096
	defaultOverlap = 0.5
	maxOverlap     = 0.95
)

// Errors returned by Welch.
var (
	ErrEmptySignal = errors.New("spectrum: signal shorter than one frame")
	ErrFFTSize     = errors.New("spectrum: fft size must be a power of two >= 16")
	ErrSampleRate  = errors.New("spectrum: sample rate must be > 0")
)

// Config selects the analysis resolution.
type Config struct {
	SampleRate float64
	FFTSize    int     // default 4096
	Overlap    float64 // frame overlap fraction in [0, 0.95], default 0.5
}

func normalizeConfig(cfg Config) (Config, error) {
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return cfg, fmt.Errorf("%w: %v", ErrSampleRate, cfg.SampleRate)
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}
	if cfg.FFTSize < 16 || !core.IsPowerOfTwo(cfg.FFTSize) {
		return cfg, fmt.Errorf("%w: %d", ErrFFTSize, cfg.FFTSize)
	}

	if cfg.Overlap <= 0 || math.IsNaN(cfg.Overlap) {
		cfg.Overlap = defaultOverlap
	}
	cfg.Overlap = core.Clamp(cfg.Overlap, 0, maxOverlap)

	return cfg, nil
}

// Spectrum is a one-sided averaged power spectrum with bins 0..FFTSize/2.
type Spectrum struct {
	SampleRate float64
	FFTSize    int
	Frames     int
	Power      []float64
}

// Welch estimates the power spectrum of signal by averaging Hann-windowed
// FFT frames.
func Welch(signal []float64, cfg Config) (*Spectrum, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	n := cfg.FFTSize
	if len(signal) < n {
		return nil, fmt.Errorf("%w: %d < %d", ErrEmptySignal, len(signal), n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	win := make([]float64, n)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	hop := max(1, int(float64(n)*(1-cfg.Overlap)))
	bins := n/2 + 1

	var (
		frame = make([]float64, n)
		in    = make([]complex128, n)
		out   = make([]complex128, n)
		re    = make([]float64, bins)
		im    = make([]float64, bins)
		pow   = make([]float64, bins)
		acc   = make([]float64, bins)
	)

	frames := 0
	for start := 0; start+n <= len(signal); start += hop {
		vecmath.MulBlock(frame, signal[start:start+n], win)
		for i, v := range frame {
			in[i] = complex(v, 0)
		}

		if err := plan.Forward(out, in); err != nil {
			return nil, fmt.Errorf("spectrum: fft: %w", err)
		}

		for k := range bins {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}
		vecmath.Power(pow, re, im)
		vecmath.AddBlockInPlace(acc, pow)
		frames++
	}

	// Average over frames and remove the window's power gain.
	winPower := f64.DotProduct(win, win)
	vecmath.ScaleBlock(acc, acc, 1/(float64(frames)*winPower))

	return &Spectrum{
		SampleRate: cfg.SampleRate,
		FFTSize:    n,
		Frames:     frames,
		Power:      acc,
	}, nil
}

// BinHz returns the bin spacing in Hz.
func (s *Spectrum) BinHz() float64 {
	return s.SampleRate / float64(s.FFTSize)
}

// Frequency returns the centre frequency of bin k.
func (s *Spectrum) Frequency(k int) float64 {
	return float64(k) * s.BinHz()
}

// Bin returns the bin nearest to hz, clamped to the spectrum.
func (s *Spectrum) Bin(hz float64) int {
	k := int(math.Round(hz / s.BinHz()))

	return max(0, min(len(s.Power)-1, k))
}

// Peak returns the frequency of the strongest bin in [loHz, hiHz].
func (s *Spectrum) Peak(loHz, hiHz float64) float64 {
	lo, hi := s.Bin(loHz), s.Bin(hiHz)
	if hi < lo {
		lo, hi = hi, lo
	}

	best := lo
	for k := lo + 1; k <= hi; k++ {
		if s.Power[k] > s.Power[best] {
			best = k
		}
	}

	return s.Frequency(best)
}

// BandEnergy sums power over the bins in [loHz, hiHz].
func (s *Spectrum) BandEnergy(loHz, hiHz float64) float64 {
	lo, hi := s.Bin(loHz), s.Bin(hiHz)
	if hi < lo {
		lo, hi = hi, lo
	}

	return f64.Sum(s.Power[lo : hi+1])
}

// TotalEnergy sums power over all bins.
func (s *Spectrum) TotalEnergy() float64 {
	return f64.Sum(s.Power)
}

// EnergyRatio returns the share of total power inside [loHz, hiHz].
// A silent spectrum yields 0.
func (s *Spectrum) EnergyRatio(loHz, hiHz float64) float64 {
	total := s.TotalEnergy()
	if total == 0 {
		return 0
	}

	return s.BandEnergy(loHz, hiHz) / total
}

// Centroid returns the power-weighted mean frequency. A silent spectrum
// yields 0.
func (s *Spectrum) Centroid() float64 {
	if s.TotalEnergy() == 0 {
		return 0
	}

	freqs := make([]float64, len(s.Power))
	for k := range freqs {
		freqs[k] = s.Frequency(k)
	}

	return stat.Mean(freqs, s.Power)
}

// DB returns the power of bin k in dB. Silent bins return -Inf.
func (s *Spectrum) DB(k int) float64 {
	return core.LinearPowerToDB(s.Power[k])
}
