package synth

import "github.com/cwbudde/algo-synth/dsp/core"

// Audio configuration defaults and limits.
const (
	DefaultBufferSize = 2048
	MaxBufferSize     = 1 << 20
)

var supportedSampleRates = [...]int{44100, 48000, 96000}

// Config is the normalized engine configuration.
type Config struct {
	BufferSize int
	SampleRate int
}

// ValidateAudioConfig coerces a requested configuration into a supported
// one. Buffer sizes that are not a power of two in [1, MaxBufferSize]
// become DefaultBufferSize; sample rates other than 44100, 48000 and 96000
// become DefaultSampleRate. It never fails.
func ValidateAudioConfig(bufferSize, sampleRate int) (int, int) {
	if !core.IsPowerOfTwo(bufferSize) || bufferSize > MaxBufferSize {
		bufferSize = DefaultBufferSize
	}

	if !SupportedSampleRate(sampleRate) {
		sampleRate = DefaultSampleRate
	}

	return bufferSize, sampleRate
}

// SupportedSampleRate reports whether rate is one of the engine's device
// rates.
func SupportedSampleRate(rate int) bool {
	for _, r := range supportedSampleRates {
		if r == rate {
			return true
		}
	}

	return false
}
