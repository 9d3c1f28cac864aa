// Package design synthesizes biquad coefficients from musical parameters.
//
// [Cookbook] evaluates the RBJ audio-EQ-cookbook formulas for a [Type] at a
// cutoff frequency, quality factor and sample rate and returns the raw
// [Prototype] terms. [Synthesize] returns the same design normalized by a0,
// ready for dsp/filter/biquad.
//
// Synthesis is pure and deterministic. Filter types without a formula
// (the shelving variants) fail with [ErrUnsupportedType] instead of
// producing silent, zeroed coefficients.
package design
