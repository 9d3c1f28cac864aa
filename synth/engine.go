package synth

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/buffer"
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/midi"
)

// DefaultGain is the output gain of a new Engine.
const DefaultGain = 1.0

// Stats counts samples moved through the queue.
type Stats struct {
	Produced uint64 // samples pushed
	Dropped  uint64 // unread samples overwritten by newer ones
	Consumed uint64 // samples popped
}

// Engine owns a Resonator, the MIDI note table and the sample queue.
type Engine struct {
	bufferSize int
	rate       atomic.Int64

	logger *slog.Logger
	notes  *midi.Table
	res    *Resonator
	queue  *buffer.Ring

	gain atomic.Uint64 // math.Float64bits

	produced atomic.Uint64
	dropped  atomic.Uint64
	consumed atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewEngine normalizes (bufferSize, sampleRate) with ValidateAudioConfig
// and builds an engine whose queue holds bufferSize samples. Errors come
// only from invalid options.
func NewEngine(bufferSize, sampleRate int, opts ...Option) (*Engine, error) {
	s := applyOptions(opts)

	bs, sr := ValidateAudioConfig(bufferSize, sampleRate)
	if bs != bufferSize || sr != sampleRate {
		s.logger.Warn("audio config coerced",
			"requested_buffer", bufferSize, "buffer", bs,
			"requested_rate", sampleRate, "rate", sr)
	}

	queue, err := buffer.NewRing(bs)
	if err != nil {
		return nil, fmt.Errorf("synth: allocate queue: %w", err)
	}

	e := &Engine{
		bufferSize: bs,
		logger:     s.logger,
		notes:      midi.New(),
		res:        NewResonator(s.src),
		queue:      queue,
	}
	e.rate.Store(int64(sr))

	if err := e.res.SetSampleRate(sr); err != nil {
		return nil, err
	}
	if err := e.res.SetFilterType(s.filterType); err != nil {
		return nil, err
	}
	if err := e.SetGain(s.gain); err != nil {
		return nil, err
	}

	e.logger.Info("engine started", "buffer", bs, "rate", sr, "type", s.filterType)

	return e, nil
}

// Config returns the queue size and the current device sample rate.
func (e *Engine) Config() Config {
	return Config{BufferSize: e.bufferSize, SampleRate: int(e.rate.Load())}
}

// Params returns the resonator's active parameters.
func (e *Engine) Params() Params {
	return e.res.Params()
}

// Resonator exposes the underlying resonator.
func (e *Engine) Resonator() *Resonator {
	return e.res
}

// NoteOn tunes the filter cutoff to the frequency of MIDI note, which must
// be in [midi.LowestNote, midi.HighestNote].
func (e *Engine) NoteOn(note int) error {
	hz, ok := e.notes.Lookup(note)
	if !ok {
		return fmt.Errorf("%w: midi note %d outside [%d, %d]",
			ErrOutOfRange, note, midi.LowestNote, midi.HighestNote)
	}

	if err := e.res.SetCutoff(hz); err != nil {
		return err
	}

	e.logger.Debug("note on", "note", note, "name", midi.Name(note), "cutoff", hz)

	return nil
}

// SetQ forwards to Resonator.SetQ.
func (e *Engine) SetQ(q float64) error {
	return e.res.SetQ(q)
}

// SetSampleRate retunes the resonator to rate, which must be one of the
// device rates accepted by SupportedSampleRate so that Config keeps
// describing the produced stream. An open output device keeps the rate it
// was opened with.
func (e *Engine) SetSampleRate(rate int) error {
	if !SupportedSampleRate(rate) {
		return fmt.Errorf("%w: sample rate %d is not a device rate %v",
			ErrOutOfRange, rate, supportedSampleRates)
	}

	if err := e.res.SetSampleRate(rate); err != nil {
		return err
	}
	e.rate.Store(int64(rate))

	return nil
}

// SetFilterType forwards to Resonator.SetFilterType.
func (e *Engine) SetFilterType(t design.Type) error {
	return e.res.SetFilterType(t)
}

// SetGain sets the output gain in [0, 1].
func (e *Engine) SetGain(g float64) error {
	if math.IsNaN(g) || g < 0 || g > 1 {
		return fmt.Errorf("%w: gain %v outside [0, 1]", ErrOutOfRange, g)
	}

	e.gain.Store(math.Float64bits(g))

	return nil
}

// Gain returns the output gain.
func (e *Engine) Gain() float64 {
	return math.Float64frombits(e.gain.Load())
}

// Generate renders one output sample in [-1, 1] without touching the
// queue.
func (e *Engine) Generate() float32 {
	y := e.res.Generate() * e.Gain()

	return float32(core.Clamp(y, -1, 1))
}

// Produce pushes n samples into the queue and returns how many unread
// samples were overwritten. After Close it does nothing.
func (e *Engine) Produce(n int) (dropped int) {
	if n <= 0 || e.closed.Load() {
		return 0
	}

	for range n {
		if e.queue.Push(e.Generate()) {
			dropped++
		}
	}

	e.produced.Add(uint64(n))
	e.dropped.Add(uint64(dropped))

	return dropped
}

// Fill tops the queue up to capacity and returns how many samples were
// pushed.
func (e *Engine) Fill() int {
	if e.closed.Load() {
		return 0
	}

	n := e.queue.Cap() - e.queue.Len()
	e.Produce(n)

	return n
}

// Run keeps the queue filled, checking every interval, until ctx is done
// or the engine is closed. It is the producer goroutine; call it at most
// once and not alongside Produce or Fill.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if e.closed.Load() {
			return nil
		}
		e.Fill()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RenderBlock fills dst with output samples in [-1, 1], bypassing the
// queue. It shares the producer role with Produce.
func (e *Engine) RenderBlock(dst []float64) {
	e.res.GenerateBlock(dst)
	vecmath.ScaleBlock(dst, dst, e.Gain())

	for i, v := range dst {
		dst[i] = core.Clamp(v, -1, 1)
	}
}

// Pop removes the oldest queued sample. ok is false if the queue is
// empty.
func (e *Engine) Pop() (float32, bool) {
	v, ok := e.queue.Pop()
	if ok {
		e.consumed.Add(1)
	}

	return v, ok
}

// PopBlock drains up to len(dst) samples and returns the count.
func (e *Engine) PopBlock(dst []float32) int {
	n := e.queue.PopBlock(dst)
	e.consumed.Add(uint64(n))

	return n
}

// ReadSamples fills dst from the queue and pads the rest with silence,
// as an audio callback needs. It returns how many samples came from the
// queue.
func (e *Engine) ReadSamples(dst []float32) int {
	n := e.PopBlock(dst)
	clear(dst[n:])

	return n
}

// Buffered returns the number of samples waiting in the queue.
func (e *Engine) Buffered() int {
	return e.queue.Len()
}

// Stats returns the queue counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Produced: e.produced.Load(),
		Dropped:  e.dropped.Load(),
		Consumed: e.consumed.Load(),
	}
}

// Close stops production. Queued samples can still be popped. Close is
// idempotent and always returns nil.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)

		st := e.Stats()
		e.logger.Info("engine stopped",
			"produced", st.Produced, "dropped", st.Dropped, "consumed", st.Consumed)
	})

	return nil
}
