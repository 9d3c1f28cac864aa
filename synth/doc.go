// Package synth is the real-time boundary of the resonator synthesizer.
//
// A Resonator runs white noise through one biquad section whose cutoff, Q,
// sample rate and response type are set from a control goroutine. An
// Engine wraps a Resonator with a MIDI note table, an output gain and a
// lock-free sample queue that an audio callback drains.
//
// Three goroutines take part:
//
//   - the control goroutine calls setters (NoteOn, SetQ, SetSampleRate,
//     SetFilterType, SetGain);
//   - the producer calls Generate, Produce, Fill or Run;
//   - the consumer calls Pop or PopBlock.
//
// Setters never block the producer. They publish a new immutable
// parameter snapshot that the producer picks up at the next sample.
package synth
