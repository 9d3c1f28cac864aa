// Package midi maps MIDI note numbers of the 88-key piano range to
// equal-tempered frequencies.
package midi

import (
	"math"
	"strconv"
)

// Note range covered by Table: A0 through C8.
const (
	LowestNote  = 21
	HighestNote = 108
	Keys        = HighestNote - LowestNote + 1

	// A4 is the reference note tuned to ReferenceHz.
	A4          = 69
	ReferenceHz = 440.0
)

// Table holds one frequency per piano key, indexed by note-LowestNote.
// A Table is immutable after New returns and may be shared freely.
type Table [Keys]float64

// New computes the table using
//
//	f = 440 * 2^((note-69)/12)
func New() *Table {
	var t Table
	for i := range t {
		t[i] = Frequency(LowestNote + i)
	}

	return &t
}

// Frequency returns the equal-tempered frequency of any MIDI note number
// without range checks.
func Frequency(note int) float64 {
	return ReferenceHz * math.Pow(2, float64(note-A4)/12)
}

// InRange reports whether note is one of the 88 table keys.
func InRange(note int) bool {
	return note >= LowestNote && note <= HighestNote
}

// Lookup returns the frequency of note. ok is false for notes outside
// [LowestNote, HighestNote]; the index is never computed for them.
func (t *Table) Lookup(note int) (hz float64, ok bool) {
	if !InRange(note) {
		return 0, false
	}

	return t[note-LowestNote], true
}

// Nearest returns the piano key whose frequency is closest to hz on a
// logarithmic scale. Frequencies outside the keyboard clamp to its ends.
func Nearest(hz float64) int {
	if !(hz > 0) {
		return LowestNote
	}

	n := int(math.Round(A4 + 12*math.Log2(hz/ReferenceHz)))
	switch {
	case n < LowestNote:
		return LowestNote
	case n > HighestNote:
		return HighestNote
	}

	return n
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the scientific pitch name of note, e.g. "A4" for 69 or
// "C8" for 108.
func Name(note int) string {
	octave := note/12 - 1
	pc := note % 12
	if pc < 0 {
		pc += 12
		octave--
	}

	return noteNames[pc] + strconv.Itoa(octave)
}
