// Package signal provides sample sources that feed the resonator: seeded
// white noise and a sine oscillator for analysis.
package signal
