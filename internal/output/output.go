// Package output plays engine samples on the default audio device.
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSample = 4

// SampleSource fills dst with mono samples and pads with silence when it
// runs dry. It returns how many samples were real.
type SampleSource interface {
	ReadSamples(dst []float32) int
}

// Stream adapts a SampleSource to the little-endian float32 byte stream
// oto reads. It is used from the device callback goroutine only.
type Stream struct {
	src     SampleSource
	buf     []float32
	samples atomic.Uint64
	starved atomic.Uint64
}

// DefaultStreamSize is the scratch size of a Stream created by NewStream.
const DefaultStreamSize = 1024

// NewStream returns a Stream reading from src.
func NewStream(src SampleSource) *Stream {
	return NewStreamSize(src, DefaultStreamSize)
}

// NewStreamSize returns a Stream whose scratch holds size samples. Reads
// of up to size samples do not allocate.
func NewStreamSize(src SampleSource, size int) *Stream {
	if size < 1 {
		size = DefaultStreamSize
	}

	return &Stream{src: src, buf: make([]float32, size)}
}

// Read implements io.Reader. It never returns an error; missing samples
// are rendered as silence.
func (s *Stream) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	if n == 0 {
		return 0, nil
	}

	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	samples := s.buf[:n]

	got := s.src.ReadSamples(samples)
	s.samples.Add(uint64(n))
	s.starved.Add(uint64(n - got))

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}

	return n * bytesPerSample, nil
}

// Underruns returns how many samples were padded with silence so far.
func (s *Stream) Underruns() uint64 {
	return s.starved.Load()
}

// Samples returns how many samples have been delivered so far.
func (s *Stream) Samples() uint64 {
	return s.samples.Load()
}

// Player drives an oto context from a Stream.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *Stream

	mu      sync.Mutex
	started bool
}

// NewPlayer opens the audio device at sampleRate, mono float32, with a
// device buffer of bufferSize samples.
func NewPlayer(src SampleSource, sampleRate, bufferSize int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferDuration(bufferSize, sampleRate),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("output: open device: %w", err)
	}
	<-ready

	stream := NewStreamSize(src, bufferSize)
	player := ctx.NewPlayer(stream)
	player.SetBufferSize(bufferSize * bytesPerSample)

	return &Player{
		ctx:    ctx,
		player: player,
		stream: stream,
	}, nil
}

// Start begins playback. Calling it twice has no effect.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.player.Play()
		p.started = true
	}
}

// Stream returns the byte stream feeding the device.
func (p *Player) Stream() *Stream {
	return p.stream
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}

	err := p.player.Close()
	p.player = nil
	p.started = false

	return err
}
