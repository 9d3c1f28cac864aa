package synth

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/signal"
	"github.com/cwbudde/algo-synth/internal/testutil"
)

func TestNewResonator_Defaults(t *testing.T) {
	r := NewResonator(nil)
	assert.Equal(t, DefaultParams(), r.Params())

	want, err := design.Synthesize(design.Bandpass, 1000, 1, 44100)
	require.NoError(t, err)
	assert.Equal(t, want, r.Coefficients())
}

func TestResonator_GenerateMatchesManualFilter(t *testing.T) {
	const n = 512

	r := NewResonator(signal.NewWhiteNoise(42))
	noise := testutil.DeterministicNoise(42, 1, n)

	var s biquad.Section
	c := r.Coefficients()
	for i := range n {
		want := s.Process(noise[i], c)
		require.Equal(t, want, r.Generate(), "sample %d", i)
	}
}

func TestResonator_Deterministic(t *testing.T) {
	a := NewResonator(signal.NewWhiteNoise(7))
	b := NewResonator(signal.NewWhiteNoise(7))
	for i := range 1000 {
		require.Equal(t, a.Generate(), b.Generate(), "sample %d", i)
	}
}

func TestResonator_ZeroInputHighpassFirstSampleIsZero(t *testing.T) {
	r := NewResonator(signal.SourceFunc(func() float64 { return 0 }))
	require.NoError(t, r.SetFilterType(design.Highpass))
	require.NoError(t, r.SetQ(0.5))
	require.NoError(t, r.SetCutoff(7500))

	assert.Equal(t, 0.0, r.Generate())
}

func TestResonator_SetCutoffNyquistBoundary(t *testing.T) {
	r := NewResonator(nil)
	require.NoError(t, r.SetCutoff(22050))
	assert.Equal(t, 22050.0, r.Params().Cutoff)

	before := r.Coefficients()
	err := r.SetCutoff(22051)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 22050.0, r.Params().Cutoff)
	assert.Equal(t, before, r.Coefficients())

	require.NoError(t, r.SetCutoff(0))
	assert.True(t, r.Coefficients().IsFinite())
}

func TestResonator_FailedSettersLeaveStateIntact(t *testing.T) {
	r := NewResonator(nil)
	require.NoError(t, r.SetCutoff(20000))
	p, c := r.Params(), r.Coefficients()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"cutoff above nyquist", func() error { return r.SetCutoff(30000) }, ErrOutOfRange},
		{"cutoff nan", func() error { return r.SetCutoff(math.NaN()) }, ErrOutOfRange},
		{"q zero", func() error { return r.SetQ(0) }, ErrInvalidParameterCombination},
		{"q negative", func() error { return r.SetQ(-1) }, ErrOutOfRange},
		{"q max", func() error { return r.SetQ(20) }, ErrOutOfRange},
		{"q inf", func() error { return r.SetQ(math.Inf(1)) }, ErrOutOfRange},
		{"rate zero", func() error { return r.SetSampleRate(0) }, ErrOutOfRange},
		{"rate max", func() error { return r.SetSampleRate(196000) }, ErrOutOfRange},
		{"rate below cutoff", func() error { return r.SetSampleRate(32000) }, ErrInvalidParameterCombination},
		{"shelving", func() error { return r.SetFilterType(design.HighShelf) }, ErrUnsupportedFilterType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
			assert.Equal(t, p, r.Params())
			assert.Equal(t, c, r.Coefficients())
		})
	}
}

func TestResonator_EverySetterResynthesizes(t *testing.T) {
	r := NewResonator(nil)

	check := func(t *testing.T) {
		t.Helper()
		p := r.Params()
		want, err := design.Synthesize(p.Type, p.Cutoff, p.Q, float64(p.SampleRate))
		require.NoError(t, err)
		assert.Equal(t, want, r.Coefficients())
	}

	require.NoError(t, r.SetQ(4))
	check(t)
	require.NoError(t, r.SetSampleRate(48000))
	check(t)
	require.NoError(t, r.SetCutoff(440))
	check(t)
	require.NoError(t, r.SetFilterType(design.Lowpass))
	check(t)
	require.NoError(t, r.SetFilterType(design.Bandstop))
	check(t)
}

func TestResonator_SettersIdempotent(t *testing.T) {
	r := NewResonator(nil)
	require.NoError(t, r.SetCutoff(1234))
	require.NoError(t, r.SetQ(3.5))

	p, c := r.Params(), r.Coefficients()

	require.NoError(t, r.SetCutoff(p.Cutoff))
	require.NoError(t, r.SetQ(p.Q))
	require.NoError(t, r.SetSampleRate(p.SampleRate))
	require.NoError(t, r.SetFilterType(p.Type))

	assert.Equal(t, p, r.Params())
	assert.Equal(t, c, r.Coefficients())
}

func TestResonator_OutputFinite(t *testing.T) {
	for _, typ := range []design.Type{design.Lowpass, design.Highpass, design.Bandpass, design.Bandstop} {
		for _, rate := range []int{44100, 48000, 96000} {
			for _, q := range []float64{0.1, 0.707, 5, 19.9} {
				for _, cutoff := range []float64{0, 27.5, 1000, float64(rate) / 2} {
					r := NewResonator(signal.NewWhiteNoise(int64(rate)))
					require.NoError(t, r.SetSampleRate(rate))
					require.NoError(t, r.SetFilterType(typ))
					require.NoError(t, r.SetQ(q))
					require.NoError(t, r.SetCutoff(cutoff))

					for i := range 2000 {
						y := r.Generate()
						if math.IsNaN(y) || math.IsInf(y, 0) {
							t.Fatalf("%s rate=%d q=%v cutoff=%v: sample %d = %v",
								typ, rate, q, cutoff, i, y)
						}
					}
				}
			}
		}
	}
}

func TestResonator_GenerateIsNotClamped(t *testing.T) {
	r := NewResonator(signal.NewWhiteNoise(3))
	require.NoError(t, r.SetFilterType(design.Lowpass))
	require.NoError(t, r.SetQ(19))
	require.NoError(t, r.SetCutoff(2637))

	peak := 0.0
	for range 44100 {
		peak = math.Max(peak, math.Abs(r.Generate()))
	}
	assert.Greater(t, peak, 1.0)
}

func TestResonator_GenerateBlockMatchesGenerate(t *testing.T) {
	a := NewResonator(signal.NewWhiteNoise(3))
	b := NewResonator(signal.NewWhiteNoise(3))

	block := make([]float64, 300)
	a.GenerateBlock(block)
	for i, v := range block {
		require.InDelta(t, b.Generate(), v, 1e-12, "sample %d", i)
	}
}

func TestResonator_Reset(t *testing.T) {
	r := NewResonator(signal.SourceFunc(func() float64 { return 0 }))
	r.filter.SetState([4]float64{0.5, 0.25, 0.1, -0.1})
	r.Reset()
	assert.Equal(t, [4]float64{}, r.filter.State())
	assert.Equal(t, 0.0, r.Generate())
}

func TestResonator_GenerateDoesNotAllocate(t *testing.T) {
	r := NewResonator(nil)
	allocs := testing.AllocsPerRun(1000, func() { _ = r.Generate() })
	assert.Zero(t, allocs)
}

func TestResonator_ConcurrentSettersAndGenerate(t *testing.T) {
	r := NewResonator(nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		cutoffs := []float64{110, 440, 1760, 7040}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_ = r.SetCutoff(cutoffs[i%len(cutoffs)])
			_ = r.SetQ(0.5 + float64(i%10))
		}
	}()

	for range 50000 {
		y := r.Generate()
		if math.IsNaN(y) || math.IsInf(y, 0) {
			close(stop)
			wg.Wait()
			t.Fatalf("bad sample %v", y)
		}
	}

	close(stop)
	wg.Wait()
}

func BenchmarkResonator_Generate(b *testing.B) {
	r := NewResonator(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = r.Generate()
	}
}
