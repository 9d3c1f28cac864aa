package synth

import (
	"log/slog"

	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/signal"
)

type settings struct {
	logger     *slog.Logger
	src        signal.Source
	filterType design.Type
	gain       float64
}

func defaultSettings() settings {
	return settings{
		filterType: DefaultType,
		gain:       DefaultGain,
	}
}

// Option configures an Engine.
type Option func(*settings)

// WithLogger sets the engine logger. Engines log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithSource replaces the white noise fed into the resonator.
func WithSource(src signal.Source) Option {
	return func(s *settings) {
		s.src = src
	}
}

// WithSeed uses white noise seeded with seed.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.src = signal.NewWhiteNoise(seed)
	}
}

// WithFilterType selects the initial filter response.
func WithFilterType(t design.Type) Option {
	return func(s *settings) {
		s.filterType = t
	}
}

// WithGain sets the initial output gain in [0, 1].
func WithGain(g float64) Option {
	return func(s *settings) {
		s.gain = g
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	return s
}
