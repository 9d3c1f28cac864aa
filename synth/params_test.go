package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-synth/dsp/filter/design"
)

func TestDefaultParams_Valid(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	assert.Equal(t, 1000.0, p.Cutoff)
	assert.Equal(t, 1.0, p.Q)
	assert.Equal(t, 44100, p.SampleRate)
	assert.Equal(t, design.Bandpass, p.Type)
	assert.Equal(t, 22050.0, p.Nyquist())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   error
	}{
		{"cutoff zero", func(p *Params) { p.Cutoff = 0 }, nil},
		{"cutoff nyquist", func(p *Params) { p.Cutoff = 22050 }, nil},
		{"cutoff above nyquist", func(p *Params) { p.Cutoff = 22051 }, ErrOutOfRange},
		{"cutoff negative", func(p *Params) { p.Cutoff = -1 }, ErrOutOfRange},
		{"cutoff nan", func(p *Params) { p.Cutoff = math.NaN() }, ErrOutOfRange},
		{"q zero", func(p *Params) { p.Q = 0 }, ErrInvalidParameterCombination},
		{"q negative", func(p *Params) { p.Q = -0.5 }, ErrOutOfRange},
		{"q max", func(p *Params) { p.Q = MaxQ }, ErrOutOfRange},
		{"q just below max", func(p *Params) { p.Q = math.Nextafter(MaxQ, 0) }, nil},
		{"q nan", func(p *Params) { p.Q = math.NaN() }, ErrOutOfRange},
		{"rate zero", func(p *Params) { p.SampleRate = 0 }, ErrOutOfRange},
		{"rate max", func(p *Params) { p.SampleRate = MaxSampleRate }, ErrOutOfRange},
		{"rate just below max", func(p *Params) { p.SampleRate = MaxSampleRate - 1 }, nil},
		{"shelving", func(p *Params) { p.Type = design.LowShelf }, ErrUnsupportedFilterType},
		{"bandstop", func(p *Params) { p.Type = design.Bandstop }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParamsCoefficients_MatchDesigner(t *testing.T) {
	p := Params{Cutoff: 1000, Q: 0.5, SampleRate: 44100, Type: design.Highpass}
	got, err := p.Coefficients()
	require.NoError(t, err)

	want, err := design.Synthesize(design.Highpass, 1000, 0.5, 44100)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.InDelta(t, -1.73358, got.A1, 1e-5)
	assert.InDelta(t, 0.75132, got.A2, 1e-5)
}

func TestDesignError(t *testing.T) {
	_, err := design.Synthesize(design.Lowpass, 100, 0, 44100)
	assert.ErrorIs(t, designError(err), ErrInvalidParameterCombination)

	_, err = design.Synthesize(design.HighShelf, 100, 1, 44100)
	assert.ErrorIs(t, designError(err), ErrUnsupportedFilterType)

	assert.NoError(t, designError(nil))
}
