package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/cwbudde/algo-synth/dsp/midi"
	"github.com/cwbudde/algo-synth/synth"
)

// Two tracker-style rows: the home row plays the white keys, the row
// above the black keys, starting at C of the current octave.
var keyOffsets = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13, 'l': 14,
}

const (
	minOctave     = 0
	maxOctave     = 7
	defaultOctave = 4
	qStep         = 1.0
	keyCtrlC      = 3
	keyEsc        = 27
)

type keyboard struct {
	octave int
}

type keyAction int

const (
	actionNone keyAction = iota
	actionNote
	actionQUp
	actionQDown
	actionQuit
)

// handle maps one key press to an action. For actionNote the MIDI note is
// returned as well.
func (k *keyboard) handle(b byte) (keyAction, int) {
	if off, ok := keyOffsets[b]; ok {
		return actionNote, 12*(k.octave+1) + off
	}

	switch b {
	case 'z':
		k.octave = max(minOctave, k.octave-1)
	case 'x':
		k.octave = min(maxOctave, k.octave+1)
	case ']':
		return actionQUp, 0
	case '[':
		return actionQDown, 0
	case 'q', keyEsc, keyCtrlC:
		return actionQuit, 0
	}

	return actionNone, 0
}

// apply performs a key action on e and returns a status line.
func apply(e *synth.Engine, action keyAction, note int) string {
	switch action {
	case actionNote:
		if err := e.NoteOn(note); err != nil {
			return fmt.Sprintf("%s: %v", midi.Name(note), err)
		}
		return fmt.Sprintf("%-4s %7.1f Hz  q %.1f", midi.Name(note), e.Params().Cutoff, e.Params().Q)
	case actionQUp, actionQDown:
		q := e.Params().Q + qStep
		if action == actionQDown {
			q = e.Params().Q - qStep
		}
		q = max(0.5, min(synth.MaxQ-0.5, q))
		if err := e.SetQ(q); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("q %.1f", q)
	}

	return ""
}

func playKeys(ctx context.Context, e *synth.Engine, stdout io.Writer) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("keys mode needs an interactive terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	stop, err := startPlayback(ctx, e)
	if err != nil {
		return err
	}
	defer stop()

	fmt.Fprint(stdout, "a-l: notes  w e t y u o: sharps  z/x: octave  [ ]: q  q: quit\r\n")

	keys := make(chan byte)
	go readKeys(os.Stdin, keys)

	kb := &keyboard{octave: defaultOctave}
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-keys:
			if !ok {
				return nil
			}
			action, note := kb.handle(b)
			if action == actionQuit {
				return nil
			}
			if line := apply(e, action, note); line != "" {
				fmt.Fprintf(stdout, "\r%-40s", line)
			}
		}
	}
}

// readKeys forwards bytes from r until it fails. The goroutine is left
// blocked in Read when the caller stops listening; the process is about
// to exit at that point.
func readKeys(r io.Reader, keys chan<- byte) {
	defer close(keys)

	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys <- buf[0]
		}
		if err != nil {
			return
		}
	}
}
