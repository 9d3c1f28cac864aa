package output

import "time"

// bufferDuration converts a buffer length in samples to the duration oto
// expects. Non-positive inputs select oto's default.
func bufferDuration(samples, sampleRate int) time.Duration {
	if samples <= 0 || sampleRate <= 0 {
		return 0
	}

	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
