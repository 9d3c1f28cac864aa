// Package biquad provides the second-order IIR (biquad) filter runtime.
//
// A [Section] owns the two-sample input and output histories of one biquad
// and advances them one sample per [Section.Process] call. Coefficients are
// passed on every call rather than stored, so a caller can swap in a new
// [Coefficients] value between any two samples (for example while sweeping
// a cutoff) without touching the filter state.
//
// This package provides the processing runtime only. Coefficient design
// (lowpass, highpass, bandpass, bandstop) lives in dsp/filter/design.
package biquad
