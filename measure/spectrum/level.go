package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Level summarizes the amplitude of a block of samples.
type Level struct {
	Peak   float64 // largest absolute sample
	RMS    float64
	Mean   float64
	StdDev float64
	Crest  float64 // Peak / RMS, 0 for silence
}

// MeasureLevel computes Level for x. An empty x yields the zero Level.
func MeasureLevel(x []float64) Level {
	if len(x) == 0 {
		return Level{}
	}

	var l Level
	l.Peak = math.Max(math.Abs(floats.Max(x)), math.Abs(floats.Min(x)))
	l.RMS = floats.Norm(x, 2) / math.Sqrt(float64(len(x)))

	if len(x) > 1 {
		l.Mean, l.StdDev = stat.MeanStdDev(x, nil)
	} else {
		l.Mean = x[0]
	}

	if l.RMS > 0 {
		l.Crest = l.Peak / l.RMS
	}

	return l
}

// DBFS converts a linear amplitude to dB relative to full scale.
func DBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(amplitude)
}
