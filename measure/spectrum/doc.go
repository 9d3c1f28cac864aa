// Package spectrum analyzes rendered resonator output: averaged power
// spectra, spectral peak and centroid, band energy and level statistics.
//
// It is offline tooling for tests and the command line; nothing here runs
// on the audio path.
package spectrum
