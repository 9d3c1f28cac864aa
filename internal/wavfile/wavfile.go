// Package wavfile renders mono float audio to PCM WAV files and reads it
// back.
package wavfile

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM = 1
	blockSize    = 4096
)

// ErrBitDepth is returned for bit depths other than 16, 24 and 32.
var ErrBitDepth = errors.New("wavfile: unsupported bit depth")

// BlockRenderer produces consecutive blocks of samples in [-1, 1].
type BlockRenderer interface {
	RenderBlock(dst []float64)
}

func maxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return math.MaxInt16, nil
	case 24:
		return 1<<23 - 1, nil
	case 32:
		return math.MaxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
}

// Writer encodes mono samples into a WAV file.
type Writer struct {
	file   *os.File
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	maxVal float64
}

// Create opens path for writing a mono WAV stream.
func Create(path string, sampleRate, bitDepth int) (*Writer, error) {
	maxVal, err := maxValue(bitDepth)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, 1, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, 0, blockSize),
			SourceBitDepth: bitDepth,
		},
		maxVal: maxVal,
	}, nil
}

// Write quantizes samples, clamped to [-1, 1], and appends them.
func (w *Writer) Write(samples []float64) error {
	data := w.buf.Data[:0]
	for _, v := range samples {
		v = math.Max(-1, math.Min(1, v))
		data = append(data, int(math.Round(v*w.maxVal)))
	}
	w.buf.Data = data

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wavfile: encode: %w", err)
	}

	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("wavfile: finalize: %w", err)
	}

	return w.file.Close()
}

// Render writes frames samples from r to a new WAV file at path.
func Render(path string, r BlockRenderer, frames, sampleRate, bitDepth int) (err error) {
	w, err := Create(path, sampleRate, bitDepth)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	block := make([]float64, blockSize)
	for frames > 0 {
		n := min(frames, blockSize)
		r.RenderBlock(block[:n])
		if err := w.Write(block[:n]); err != nil {
			return err
		}
		frames -= n
	}

	return nil
}

// Read decodes a WAV file into float samples of its first channel.
func Read(path string) (samples []float64, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: decode: %w", err)
	}

	maxVal, err := maxValue(int(dec.BitDepth))
	if err != nil {
		return nil, 0, err
	}

	channels := max(1, buf.Format.NumChannels)
	samples = make([]float64, len(buf.Data)/channels)
	for i := range samples {
		samples[i] = float64(buf.Data[i*channels]) / maxVal
	}

	return samples, buf.Format.SampleRate, nil
}
