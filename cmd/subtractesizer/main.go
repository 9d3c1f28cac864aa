// Command subtractesizer plays or renders filtered noise tuned to a MIDI
// note.
//
// Usage:
//
//	subtractesizer [flags]
//
// Modes:
//
//	play    stream to the default audio device for -seconds
//	render  write -seconds of audio to the WAV file -out and print levels
//	script  run the Lua file -script against the engine
//	keys    play notes from the computer keyboard
//
// Examples:
//
//	subtractesizer -note 57 -q 12 -seconds 3
//	subtractesizer -mode render -type lowpass -note 45 -out bass.wav
//	subtractesizer -mode script -script arp.lua
//	subtractesizer -mode keys -q 15
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/internal/output"
	"github.com/cwbudde/algo-synth/internal/script"
	"github.com/cwbudde/algo-synth/internal/wavfile"
	"github.com/cwbudde/algo-synth/measure/spectrum"
	"github.com/cwbudde/algo-synth/synth"
)

type options struct {
	mode       string
	note       int
	q          float64
	filterType string
	rate       int
	buffer     int
	gain       float64
	seconds    float64
	out        string
	bitDepth   int
	script     string
	seed       int64
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("subtractesizer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.mode, "mode", "play", "play, render, script or keys")
	fs.IntVar(&o.note, "note", 69, "MIDI note (21-108) setting the filter cutoff")
	fs.Float64Var(&o.q, "q", 1, "filter quality factor, 0 < q < 20")
	fs.StringVar(&o.filterType, "type", "bandpass", "filter type: lowpass, highpass, bandpass or bandstop")
	fs.IntVar(&o.rate, "rate", 44100, "sample rate (44100, 48000 or 96000)")
	fs.IntVar(&o.buffer, "buffer", 2048, "sample queue length, a power of two")
	fs.Float64Var(&o.gain, "gain", 0.5, "output gain in [0, 1]")
	fs.Float64Var(&o.seconds, "seconds", 2, "duration for play and render")
	fs.StringVar(&o.out, "out", "subtractesizer.wav", "render output file")
	fs.IntVar(&o.bitDepth, "bits", 16, "render bit depth (16, 24 or 32)")
	fs.StringVar(&o.script, "script", "", "Lua script for script mode")
	fs.Int64Var(&o.seed, "seed", synth.DefaultSeed, "noise seed")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: subtractesizer [flags]\n\n")
		fmt.Fprintf(stderr, "Plays white noise through a resonant biquad tuned to a MIDI note.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  subtractesizer -note 57 -q 12 -seconds 3\n")
		fmt.Fprintf(stderr, "  subtractesizer -mode render -type lowpass -note 45 -out bass.wav\n")
		fmt.Fprintf(stderr, "  subtractesizer -mode script -script arp.lua\n")
		fmt.Fprintf(stderr, "  subtractesizer -mode keys -q 15\n")
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	return o, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newEngine(o options, logger *slog.Logger) (*synth.Engine, error) {
	t, err := design.ParseType(o.filterType)
	if err != nil {
		return nil, err
	}

	e, err := synth.NewEngine(o.buffer, o.rate,
		synth.WithLogger(logger),
		synth.WithSeed(o.seed),
		synth.WithFilterType(t),
		synth.WithGain(o.gain),
	)
	if err != nil {
		return nil, err
	}

	if err := e.SetQ(o.q); err != nil {
		return nil, err
	}
	if err := e.NoteOn(o.note); err != nil {
		return nil, err
	}

	return e, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, o.verbose)

	e, err := newEngine(o, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	switch o.mode {
	case "play":
		return play(ctx, e, o.seconds)
	case "render":
		return render(e, o, stdout)
	case "script":
		return runScript(ctx, e, o.script, logger)
	case "keys":
		return playKeys(ctx, e, stdout)
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}
}

// startPlayback opens the device and starts the producer goroutine. The
// returned function stops both.
func startPlayback(ctx context.Context, e *synth.Engine) (func(), error) {
	cfg := e.Config()

	p, err := output.NewPlayer(e, cfg.SampleRate, cfg.BufferSize)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx, bufferPeriod(cfg)/4)
	}()

	p.Start()

	return func() {
		cancel()
		<-done
		_ = p.Close()
	}, nil
}

func bufferPeriod(cfg synth.Config) time.Duration {
	return time.Duration(cfg.BufferSize) * time.Second / time.Duration(cfg.SampleRate)
}

func play(ctx context.Context, e *synth.Engine, seconds float64) error {
	stop, err := startPlayback(ctx, e)
	if err != nil {
		return err
	}
	defer stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	}

	return nil
}

func render(e *synth.Engine, o options, stdout io.Writer) error {
	rate := e.Params().SampleRate
	frames := int(o.seconds * float64(rate))
	if frames <= 0 {
		return fmt.Errorf("render length must be > 0: %v s", o.seconds)
	}

	if err := wavfile.Render(o.out, e, frames, rate, o.bitDepth); err != nil {
		return err
	}

	samples, _, err := wavfile.Read(o.out)
	if err != nil {
		return err
	}

	return printSummary(stdout, o.out, samples, rate)
}

func printSummary(w io.Writer, path string, samples []float64, rate int) error {
	l := spectrum.MeasureLevel(samples)
	_, err := fmt.Fprintf(w, "%s: %d samples @ %d Hz, peak %.1f dBFS, rms %.1f dBFS\n",
		path, len(samples), rate, spectrum.DBFS(l.Peak), spectrum.DBFS(l.RMS))
	if err != nil {
		return err
	}

	s, err := spectrum.Welch(samples, spectrum.Config{SampleRate: float64(rate)})
	if err != nil {
		// Too short for a spectrum; the level line is enough.
		return nil
	}

	_, err = fmt.Fprintf(w, "spectral peak %.0f Hz, centroid %.0f Hz\n",
		s.Peak(20, float64(rate)/2), s.Centroid())

	return err
}

func runScript(ctx context.Context, e *synth.Engine, path string, logger *slog.Logger) error {
	if path == "" {
		return errors.New("script mode needs -script")
	}

	h := script.New(e, logger)
	defer h.Close()

	return h.RunFile(ctx, path)
}
