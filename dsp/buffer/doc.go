// Package buffer provides the bounded sample queue between the goroutine
// that renders audio and the one that plays it.
package buffer
